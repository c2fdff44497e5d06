package orchestrator

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/magiconair/properties/assert"
	"github.com/stretchr/testify/require"

	"github.com/swagata71/ds-practice-2025/configs"
	"github.com/swagata71/ds-practice-2025/network"
	"github.com/swagata71/ds-practice-2025/utils"
)

var kit *LocalKit

func TestMain(m *testing.M) {
	configs.ExecutorPollInterval = 100 * time.Millisecond
	configs.PeerProbeInterval = 100 * time.Millisecond
	configs.LeaderAnnounceTimeout = 2 * time.Second
	kit = NewLocalKit(60300)
	code := m.Run()
	kit.Close()
	os.Exit(code)
}

func orderPayload(i int) map[string]interface{} {
	return map[string]interface{}{
		"order_id":       fmt.Sprintf("order-%d-%d", i, time.Now().UnixNano()),
		"user_id":        fmt.Sprintf("user%d", i),
		"amount":         float64(10),
		"payment_method": "credit_card",
		"user":           map[string]interface{}{"name": fmt.Sprintf("User %d", i), "contact": fmt.Sprintf("user%d@x.com", i)},
		"creditCard": map[string]interface{}{
			"number": "4111111111111111", "expirationDate": "12/25", "cvv": "123",
		},
		"items": []map[string]interface{}{{"name": "Book A", "quantity": 1}},
		"billingAddress": map[string]interface{}{
			"street": "Load 1", "city": "Tartu", "state": "TC", "zip": "50090", "country": "EE",
		},
		"shippingMethod": "Standard",
		"termsAccepted":  true,
	}
}

func postCheckout(t *testing.T, payload map[string]interface{}) (int, map[string]interface{}) {
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post("http://"+configs.OrchestratorHTTPAddress+"/checkout",
		"application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp.StatusCode, parsed
}

func waitForLeader(t *testing.T) {
	deadline := time.Now().Add(20 * time.Second)
	for time.Now().Before(deadline) {
		for _, e := range kit.Executors {
			if e.IsLeader() {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("no executor leader elected")
}

func waitForDrain(t *testing.T) {
	deadline := time.Now().Add(20 * time.Second)
	for time.Now().Before(deadline) {
		if kit.Queue.Manager.Len() == 0 {
			// let the in-flight execution land.
			time.Sleep(3 * configs.ExecutorPollInterval)
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("order queue never drained")
}

func TestCheckoutMissingOrderID(t *testing.T) {
	payload := orderPayload(0)
	delete(payload, "order_id")
	code, body := postCheckout(t, payload)
	assert.Equal(t, code, http.StatusBadRequest)
	require.Contains(t, body, "error")
}

func TestCheckoutApproved(t *testing.T) {
	payload := orderPayload(1)
	code, body := postCheckout(t, payload)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, body["status"], "Order Approved")
	assert.Equal(t, body["orderId"], payload["order_id"])
	suggested := body["suggestedBooks"].([]interface{})
	titles := make([]string, 0, len(suggested))
	for _, s := range suggested {
		titles = append(titles, s.(map[string]interface{})["title"].(string))
	}
	assert.Equal(t, titles, []string{"Book C", "Book D"})

	// finalization clears the per-order checker state.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if kit.Fraud.Manager.OrderCount() == 0 && kit.Transaction.Manager.OrderCount() == 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	assert.Equal(t, kit.Fraud.Manager.OrderCount(), 0)
	assert.Equal(t, kit.Transaction.Manager.OrderCount(), 0)
}

func TestCheckoutSettlesPayment(t *testing.T) {
	payload := orderPayload(5)
	code, _ := postCheckout(t, payload)
	require.Equal(t, http.StatusOK, code)
	// the prepare/commit pair runs before the response, so the stub has
	// already seen the commit.
	orderID := payload["order_id"].(string)
	assert.Equal(t, kit.Payment.Settled(orderID), true)
	assert.Equal(t, kit.Payment.PreparedCount(), 0)
}

func TestCheckoutHighAmountRejected(t *testing.T) {
	payload := orderPayload(2)
	payload["amount"] = float64(1500)
	code, body := postCheckout(t, payload)
	assert.Equal(t, code, http.StatusBadRequest)
	assert.Equal(t, body["status"], "rejected")
	assert.Equal(t, body["reason"], configs.FraudDetectedMsg)
}

func TestCheckoutShortCardRejected(t *testing.T) {
	payload := orderPayload(3)
	payload["creditCard"] = map[string]interface{}{"number": "411111", "expirationDate": "12/25", "cvv": "123"}
	code, body := postCheckout(t, payload)
	assert.Equal(t, code, http.StatusBadRequest)
	assert.Equal(t, body["reason"], configs.InvalidCardFormatMsg)
}

func TestCheckoutSeparatorsInCardAccepted(t *testing.T) {
	payload := orderPayload(4)
	payload["creditCard"] = map[string]interface{}{"number": "4111-1111 1111-1111", "expirationDate": "12/25", "cvv": "123"}
	code, _ := postCheckout(t, payload)
	assert.Equal(t, code, http.StatusOK)
}

func TestCheckoutMixedBatch(t *testing.T) {
	var wg sync.WaitGroup
	codes := make([]int, 6)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := orderPayload(10 + i)
			if i%2 == 1 {
				payload["amount"] = float64(2000)
			}
			codes[i], _ = postCheckout(t, payload)
		}(i)
	}
	wg.Wait()
	for i, code := range codes {
		if i%2 == 1 {
			assert.Equal(t, code, http.StatusBadRequest, fmt.Sprintf("order %d", i))
		} else {
			assert.Equal(t, code, http.StatusOK, fmt.Sprintf("order %d", i))
		}
	}
}

// Ten identical orders race for one remaining copy. Every checkout is
// accepted, the elected leader drains the queue, and the conditional
// decrement lets exactly one order through.
func TestConflictingOrders(t *testing.T) {
	waitForLeader(t)
	waitForDrain(t)

	client := network.NewClient("127.0.0.1:60399")
	defer client.Close()
	write := network.NewOrderPack(configs.WriteStock, utils.GetCallID(), "", "reset")
	write.Stock = &network.StockPayload{Title: configs.DefaultStockTitle, NewStock: 1}
	resp, err := client.Call(configs.InventoryAddress, write)
	require.NoError(t, err)
	require.True(t, resp.Success)

	const racers = 10
	var wg sync.WaitGroup
	codes := make([]int, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i], _ = postCheckout(t, orderPayload(100+i))
		}(i)
	}
	wg.Wait()
	for i, code := range codes {
		assert.Equal(t, code, http.StatusOK, fmt.Sprintf("order %d", i))
	}
	waitForDrain(t)

	read := network.NewOrderPack(configs.ReadStock, utils.GetCallID(), "", "check")
	read.Stock = &network.StockPayload{Title: configs.DefaultStockTitle}
	resp, err = client.Call(configs.InventoryAddress, read)
	require.NoError(t, err)
	assert.Equal(t, resp.Stock, int32(0))

	// overwrites replicate but decrements stay local to the primary, so
	// the backup still holds the copy from the reset write above.
	resp, err = client.Call(configs.InventoryBackupAddress, read)
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, resp.Stock, int32(1))
}
