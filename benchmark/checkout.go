package benchmark

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/pingcap/go-ycsb/pkg/generator"

	"github.com/swagata71/ds-practice-2025/configs"
	"github.com/swagata71/ds-practice-2025/utils"
)

// The storefront catalogue the load driver draws titles from.
var titles = []string{
	"Book A", "Book B", "Book C", "Book D", "Book E", "Book F",
	"Book G", "Book H", "Book I", "Book J", "Book K", "Book L",
}

// CheckoutStmt drives randomized checkout load against a running
// orchestrator.
type CheckoutStmt struct {
	stat *utils.Stat
	url  string
	stop int32

	// FraudRate the share of orders priced above the fraud threshold.
	FraudRate float64
	// PremiumRate the share of premium user orders.
	PremiumRate float64
	// Skewness the zipfian parameter for title selection.
	Skewness float64
}

type checkoutClient struct {
	md   int
	from *CheckoutStmt
	r    *rand.Rand
	zip  *generator.Zipfian
	http *http.Client
}

func NewCheckoutStmt(orchestratorHTTPAddress string) *CheckoutStmt {
	return &CheckoutStmt{
		stat:        utils.NewStat(),
		url:         "http://" + orchestratorHTTPAddress + "/checkout",
		FraudRate:   0.05,
		PremiumRate: 0.2,
		Skewness:    0.5,
	}
}

func (c *checkoutClient) buildOrder(orderSeq uint64) map[string]interface{} {
	amount := float64(c.r.Intn(900) + 10)
	if c.r.Float64() < c.from.FraudRate {
		amount = configs.FraudAmountThreshold + float64(c.r.Intn(1000)+1)
	}
	userType := configs.RegularUserType
	if c.r.Float64() < c.from.PremiumRate {
		userType = configs.PremiumUserType
	}
	itemCount := c.r.Intn(3) + 1
	items := make([]map[string]interface{}, 0, itemCount)
	for i := 0; i < itemCount; i++ {
		items = append(items, map[string]interface{}{
			"name":     titles[int(c.zip.Next(c.r))],
			"quantity": c.r.Intn(2) + 1,
		})
	}
	return map[string]interface{}{
		"order_id":       fmt.Sprintf("bench-%d-%d", c.md, orderSeq),
		"user_id":        fmt.Sprintf("client%d", c.md),
		"amount":         amount,
		"payment_method": "credit_card",
		"userType":       userType,
		"user": map[string]interface{}{
			"name":    fmt.Sprintf("Client %d", c.md),
			"contact": fmt.Sprintf("client%d@bench.local", c.md),
			"address": "Narva mnt 18, Tartu",
		},
		"creditCard": map[string]interface{}{
			"number": "4111111111111111", "expirationDate": "12/27", "cvv": "123",
		},
		"items":          items,
		"shippingMethod": "Standard",
		"termsAccepted":  true,
	}
}

func (c *checkoutClient) performCheckout(orderSeq uint64) {
	order := c.buildOrder(orderSeq)
	orderID := order["order_id"].(string)
	defer configs.TimeTrack(time.Now(), "performCheckout", orderID)
	info := utils.NewInfo(orderID)
	begin := time.Now()

	body, err := json.Marshal(order)
	configs.CheckError(err)
	resp, err := c.http.Post(c.from.url, "application/json", bytes.NewReader(body))
	if err != nil {
		configs.Warn(false, "checkout request failed: "+err.Error())
		info.Outcome = utils.OutcomeEnqueueFail
		c.from.stat.Append(info)
		return
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	info.Latency = time.Since(begin)

	switch resp.StatusCode {
	case http.StatusOK:
		info.Outcome = utils.OutcomeApproved
		var parsed map[string]interface{}
		if err = json.Unmarshal(raw, &parsed); err == nil {
			if books, ok := parsed["suggestedBooks"].([]interface{}); ok {
				info.Suggested = len(books)
			}
		}
	case http.StatusBadRequest:
		var parsed map[string]interface{}
		info.Outcome = utils.OutcomeInvalid
		if err = json.Unmarshal(raw, &parsed); err == nil && parsed["reason"] == configs.FraudDetectedMsg {
			info.Outcome = utils.OutcomeFraud
		}
	default:
		info.Outcome = utils.OutcomeEnqueueFail
	}
	c.from.stat.Append(info)
}

func (stmt *CheckoutStmt) Stopped() bool {
	return atomic.LoadInt32(&stmt.stop) != 0
}

func (stmt *CheckoutStmt) Stop() {
	atomic.StoreInt32(&stmt.stop, 1)
}

func (stmt *CheckoutStmt) startCheckoutClient(seed int, md int) {
	client := checkoutClient{md: md, from: stmt, http: &http.Client{Timeout: configs.CallTimeout}}
	client.r = rand.New(rand.NewSource(int64(seed)*11 + 31))
	client.zip = generator.NewZipfianWithRange(0, int64(len(titles)-1), stmt.Skewness)
	var seq uint64
	for !stmt.Stopped() {
		seq++
		client.performCheckout(seq)
	}
}

// CheckoutTest runs clients concurrent load drivers for the given duration
// and logs the latency percentiles.
func (stmt *CheckoutStmt) CheckoutTest(clients int, duration time.Duration) {
	stmt.stat.Clear()
	for i := 0; i < clients; i++ {
		go stmt.startCheckoutClient(i*11+13, i)
	}
	configs.TPrintf("All clients Started")
	time.Sleep(duration)
	stmt.Stop()
	stmt.stat.Log()
	stmt.stat.Clear()
}

// TestCheckout the entry point used by the server binary's bench mode.
func TestCheckout(orchestratorHTTPAddress string, clients int, seconds int) {
	stmt := NewCheckoutStmt(orchestratorHTTPAddress)
	stmt.CheckoutTest(clients, time.Duration(seconds)*time.Second)
}
