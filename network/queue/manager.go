package queue

import (
	"container/heap"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/swagata71/ds-practice-2025/configs"
	"github.com/swagata71/ds-practice-2025/network"
)

type entry struct {
	score     float64
	timestamp time.Time
	seq       uint64
	orderID   string
}

// orderHeap a max-heap on score; among equal scores the earlier enqueue
// wins. The seq counter breaks timestamp collisions on coarse clocks.
type orderHeap []*entry

func (h orderHeap) Len() int { return len(h) }

func (h orderHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score > h[j].score
	}
	if !h[i].timestamp.Equal(h[j].timestamp) {
		return h[i].timestamp.Before(h[j].timestamp)
	}
	return h[i].seq < h[j].seq
}

func (h orderHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *orderHeap) Push(x interface{}) {
	*h = append(*h, x.(*entry))
}

func (h *orderHeap) Pop() interface{} {
	old := *h
	n := len(old)
	res := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return res
}

// Manager holds the accepted orders waiting for the executor leader.
type Manager struct {
	stmt   *Context
	latch  sync.Mutex
	seq    uint64
	orders orderHeap
}

func NewManager(stmt *Context) *Manager {
	m := &Manager{stmt: stmt, orders: make(orderHeap, 0)}
	heap.Init(&m.orders)
	return m
}

// Score ranks an order for dequeue. Premium users jump the line a little.
func Score(amount float64, itemCount int32, userType string) float64 {
	score := amount + float64(itemCount)
	if userType == configs.PremiumUserType {
		score += configs.PremiumPriorityBonus
	}
	return score
}

func (m *Manager) handleRequest(requestBytes []byte) {
	var req network.ServiceGossip
	if err := json.Unmarshal(requestBytes, &req); err != nil {
		configs.Warn(false, "order queue dropped an unreadable message: "+err.Error())
		return
	}
	resp := network.NewReply(&req)
	switch req.Mark {
	case configs.Enqueue:
		m.enqueue(&req, resp)
	case configs.Dequeue:
		m.dequeue(&req, resp)
	default:
		configs.Warn(false, "order queue received unknown op "+req.Mark)
		return
	}
	respBytes, err := json.Marshal(resp)
	configs.CheckError(err)
	m.stmt.conn.SendMsg(req.From, respBytes)
}

func (m *Manager) enqueue(req *network.ServiceGossip, resp *network.ServiceResponse) {
	m.latch.Lock()
	defer m.latch.Unlock()
	score := Score(req.Queue.Amount, req.Queue.ItemCount, req.Queue.UserType)
	m.seq++
	heap.Push(&m.orders, &entry{score: score, timestamp: time.Now(), seq: m.seq, orderID: req.OrderID})
	configs.OrderPrint(req.OrderID, "enqueued with priority %v", score)
	resp.Success = true
}

func (m *Manager) dequeue(req *network.ServiceGossip, resp *network.ServiceResponse) {
	m.latch.Lock()
	defer m.latch.Unlock()
	resp.Success = true
	if m.orders.Len() == 0 {
		resp.OrderID = ""
		return
	}
	top := heap.Pop(&m.orders).(*entry)
	resp.OrderID = top.orderID
	configs.OrderPrint(top.orderID, "dequeued with priority %v", top.score)
}

// Len the number of waiting orders, for tests.
func (m *Manager) Len() int {
	m.latch.Lock()
	defer m.latch.Unlock()
	return m.orders.Len()
}
