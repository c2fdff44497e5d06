package fraud

import (
	"sync"

	"github.com/goccy/go-json"

	"github.com/swagata71/ds-practice-2025/configs"
	"github.com/swagata71/ds-practice-2025/network"
)

type orderRecord struct {
	payload *network.FraudPayload
	vc      network.VectorClock
}

// Manager keeps the per-order fraud state. Records live from InitOrder
// until a ClearOrder whose final clock covers every local event.
type Manager struct {
	stmt   *Context
	latch  sync.Mutex
	orders map[string]*orderRecord
}

func NewManager(stmt *Context) *Manager {
	return &Manager{
		stmt:   stmt,
		orders: make(map[string]*orderRecord),
	}
}

func (m *Manager) handleRequest(requestBytes []byte) {
	var req network.ServiceGossip
	if err := json.Unmarshal(requestBytes, &req); err != nil {
		configs.Warn(false, "fraud checker dropped an unreadable message: "+err.Error())
		return
	}
	resp := network.NewReply(&req)
	switch req.Mark {
	case configs.InitOrder:
		m.initOrder(&req, resp)
	case configs.CheckUserFraud:
		m.checkUserFraud(&req, resp)
	case configs.CheckCardFraud:
		m.checkCardFraud(&req, resp)
	case configs.ClearOrder:
		m.clearOrder(&req, resp)
	default:
		configs.Warn(false, "fraud checker received unknown op "+req.Mark)
		return
	}
	respBytes, err := json.Marshal(resp)
	configs.CheckError(err)
	m.stmt.conn.SendMsg(req.From, respBytes)
}

func (m *Manager) initOrder(req *network.ServiceGossip, resp *network.ServiceResponse) {
	m.latch.Lock()
	defer m.latch.Unlock()
	configs.OrderPrint(req.OrderID, "fraud state created with amount %v", req.Fraud.Amount)
	m.orders[req.OrderID] = &orderRecord{
		payload: req.Fraud,
		vc:      network.NewVectorClock(configs.FraudServiceID),
	}
	resp.Success = true
	resp.VC = m.orders[req.OrderID].vc.Clone()
}

func (m *Manager) checkUserFraud(req *network.ServiceGossip, resp *network.ServiceResponse) {
	m.latch.Lock()
	defer m.latch.Unlock()
	rec, ok := m.orders[req.OrderID]
	if !ok {
		resp.Success = false
		resp.Reason = configs.OrderStateMissingMsg
		return
	}
	rec.vc.Tick(configs.FraudServiceID)
	resp.Success = true
	resp.VC = rec.vc.Clone()
}

func (m *Manager) checkCardFraud(req *network.ServiceGossip, resp *network.ServiceResponse) {
	m.latch.Lock()
	defer m.latch.Unlock()
	rec, ok := m.orders[req.OrderID]
	if !ok {
		resp.Success = false
		resp.Reason = configs.OrderStateMissingMsg
		return
	}
	rec.vc.Tick(configs.FraudServiceID)
	isFraud := rec.payload.Amount > configs.FraudAmountThreshold
	configs.OrderPrint(req.OrderID, "card fraud verdict for amount %v: %v", rec.payload.Amount, isFraud)
	resp.Success = !isFraud
	if isFraud {
		resp.Reason = configs.FraudDetectedMsg
	}
	resp.VC = rec.vc.Clone()
}

func (m *Manager) clearOrder(req *network.ServiceGossip, resp *network.ServiceResponse) {
	m.latch.Lock()
	defer m.latch.Unlock()
	rec, ok := m.orders[req.OrderID]
	if !ok {
		// clearing twice is fine.
		resp.Success = true
		resp.Reason = configs.ClearedMsg
		return
	}
	if rec.vc.DominatedBy(req.FinalVC) {
		delete(m.orders, req.OrderID)
		resp.Success = true
		resp.Reason = configs.ClearedMsg
	} else {
		resp.Success = false
		resp.Reason = configs.VCMismatchMsg
	}
}

// OrderCount the number of live per-order records, for tests.
func (m *Manager) OrderCount() int {
	m.latch.Lock()
	defer m.latch.Unlock()
	return len(m.orders)
}
