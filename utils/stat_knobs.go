package utils

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"
)

// Outcome codes for one checkout attempt.
const (
	OutcomeApproved = iota
	OutcomeFraud
	OutcomeInvalid
	OutcomeEnqueueFail
)

// Info the visible result of one checkout round trip.
type Info struct {
	OrderID   string
	Outcome   int
	Latency   time.Duration
	Suggested int
}

func NewInfo(orderID string) *Info {
	return &Info{OrderID: orderID, Outcome: OutcomeApproved, Latency: 0}
}

// Stat collects checkout outcomes across client goroutines.
type Stat struct {
	mu        *sync.Mutex
	infos     []*Info
	beginTime time.Time
	endTime   time.Time
}

func NewStat() *Stat {
	return &Stat{
		mu:        &sync.Mutex{},
		infos:     make([]*Info, 0),
		beginTime: time.Now(),
		endTime:   time.Now(),
	}
}

func (st *Stat) Append(info *Info) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.endTime = time.Now()
	st.infos = append(st.infos, info)
}

func (st *Stat) Clear() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.infos = st.infos[:0]
	st.beginTime = time.Now()
}

func (st *Stat) Log() {
	st.mu.Lock()
	defer st.mu.Unlock()
	approved, fraud, invalid, failed := 0, 0, 0, 0
	latencies := make([]int, 0, len(st.infos))
	latencySum := 0
	for _, tmp := range st.infos {
		switch tmp.Outcome {
		case OutcomeApproved:
			approved++
		case OutcomeFraud:
			fraud++
		case OutcomeInvalid:
			invalid++
		case OutcomeEnqueueFail:
			failed++
		}
		if tmp.Latency > 0 {
			latencySum += int(tmp.Latency)
			latencies = append(latencies, int(tmp.Latency))
		}
	}
	msg := "order_cnt:" + strconv.Itoa(len(st.infos)) + ";"
	msg += "approved:" + strconv.Itoa(approved) + ";"
	msg += "fraud_reject:" + strconv.Itoa(fraud) + ";"
	msg += "invalid_reject:" + strconv.Itoa(invalid) + ";"
	msg += "enqueue_fail:" + strconv.Itoa(failed) + ";"
	sort.Ints(latencies)
	if len(latencies) > 0 {
		i := Min((len(latencies)*99+99)/100, len(latencies)-1)
		msg += "p99_latency:" + time.Duration(int64(latencies[i])).String() + ";"
		i = Min((len(latencies)*9+9)/10, len(latencies)-1)
		msg += "p90_latency:" + time.Duration(int64(latencies[i])).String() + ";"
		i = Min((len(latencies)+1)/2, len(latencies)-1)
		msg += "p50_latency:" + time.Duration(int64(latencies[i])).String() + ";"
		msg += "ave_latency:" + time.Duration(int64(float64(latencySum)/float64(len(latencies)))).String() + ";"
	} else {
		msg += "p99_latency:nil;"
		msg += "p90_latency:nil;"
		msg += "p50_latency:nil;"
		msg += "ave_latency:nil;"
	}
	fmt.Println(msg)
}
