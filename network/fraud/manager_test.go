package fraud

import (
	"testing"

	"github.com/magiconair/properties/assert"

	"github.com/swagata71/ds-practice-2025/configs"
	"github.com/swagata71/ds-practice-2025/network"
)

func newTestManager() *Manager {
	return NewManager(&Context{})
}

func pack(mark string, orderID string) *network.ServiceGossip {
	return network.NewOrderPack(mark, 1, "test", orderID)
}

func TestFraudHappyPath(t *testing.T) {
	m := newTestManager()
	req := pack(configs.InitOrder, "o1")
	req.Fraud = &network.FraudPayload{UserID: "u1", Amount: 120}
	resp := network.NewReply(req)
	m.initOrder(req, resp)
	assert.Equal(t, resp.Success, true)
	assert.Equal(t, resp.VC[configs.FraudServiceID], uint64(1))

	req = pack(configs.CheckUserFraud, "o1")
	resp = network.NewReply(req)
	m.checkUserFraud(req, resp)
	assert.Equal(t, resp.Success, true)
	assert.Equal(t, resp.VC[configs.FraudServiceID], uint64(2))

	req = pack(configs.CheckCardFraud, "o1")
	resp = network.NewReply(req)
	m.checkCardFraud(req, resp)
	assert.Equal(t, resp.Success, true)
	assert.Equal(t, resp.VC[configs.FraudServiceID], uint64(3))
}

func TestFraudHighAmountRejected(t *testing.T) {
	m := newTestManager()
	req := pack(configs.InitOrder, "o1")
	req.Fraud = &network.FraudPayload{UserID: "u1", Amount: 1500}
	m.initOrder(req, network.NewReply(req))

	req = pack(configs.CheckCardFraud, "o1")
	resp := network.NewReply(req)
	m.checkCardFraud(req, resp)
	assert.Equal(t, resp.Success, false)
	assert.Equal(t, resp.Reason, configs.FraudDetectedMsg)
}

func TestFraudThresholdIsExclusive(t *testing.T) {
	m := newTestManager()
	req := pack(configs.InitOrder, "o1")
	req.Fraud = &network.FraudPayload{UserID: "u1", Amount: 1000}
	m.initOrder(req, network.NewReply(req))

	req = pack(configs.CheckCardFraud, "o1")
	resp := network.NewReply(req)
	m.checkCardFraud(req, resp)
	assert.Equal(t, resp.Success, true)
}

func TestFraudMissingRecord(t *testing.T) {
	m := newTestManager()
	req := pack(configs.CheckUserFraud, "nope")
	resp := network.NewReply(req)
	m.checkUserFraud(req, resp)
	assert.Equal(t, resp.Success, false)
	assert.Equal(t, resp.Reason, configs.OrderStateMissingMsg)

	req = pack(configs.CheckCardFraud, "nope")
	resp = network.NewReply(req)
	m.checkCardFraud(req, resp)
	assert.Equal(t, resp.Success, false)
}

func TestFraudClearOrder(t *testing.T) {
	m := newTestManager()
	req := pack(configs.InitOrder, "o1")
	req.Fraud = &network.FraudPayload{UserID: "u1", Amount: 10}
	m.initOrder(req, network.NewReply(req))
	req = pack(configs.CheckUserFraud, "o1")
	m.checkUserFraud(req, network.NewReply(req))

	// a stale final clock must not clear the record.
	req = pack(configs.ClearOrder, "o1")
	req.FinalVC = network.VectorClock{configs.FraudServiceID: 1}
	resp := network.NewReply(req)
	m.clearOrder(req, resp)
	assert.Equal(t, resp.Success, false)
	assert.Equal(t, resp.Reason, configs.VCMismatchMsg)
	assert.Equal(t, m.OrderCount(), 1)

	req = pack(configs.ClearOrder, "o1")
	req.FinalVC = network.VectorClock{configs.FraudServiceID: 2}
	resp = network.NewReply(req)
	m.clearOrder(req, resp)
	assert.Equal(t, resp.Success, true)
	assert.Equal(t, resp.Reason, configs.ClearedMsg)
	assert.Equal(t, m.OrderCount(), 0)

	// clearing an already cleared order succeeds.
	resp = network.NewReply(req)
	m.clearOrder(req, resp)
	assert.Equal(t, resp.Success, true)
}

// The orchestrator broadcasts one clock merged across both checker flows;
// foreign entries must not block the clear.
func TestFraudClearWithMergedClock(t *testing.T) {
	m := newTestManager()
	req := pack(configs.InitOrder, "o1")
	req.Fraud = &network.FraudPayload{UserID: "u1", Amount: 10}
	m.initOrder(req, network.NewReply(req))
	req = pack(configs.CheckUserFraud, "o1")
	m.checkUserFraud(req, network.NewReply(req))

	req = pack(configs.ClearOrder, "o1")
	req.FinalVC = network.VectorClock{
		configs.FraudServiceID:       2,
		configs.TransactionServiceID: 4,
	}
	resp := network.NewReply(req)
	m.clearOrder(req, resp)
	assert.Equal(t, resp.Success, true)
	assert.Equal(t, m.OrderCount(), 0)
}
