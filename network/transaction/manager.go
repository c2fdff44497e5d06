package transaction

import (
	"sync"

	"github.com/goccy/go-json"

	"github.com/swagata71/ds-practice-2025/configs"
	"github.com/swagata71/ds-practice-2025/network"
)

type orderRecord struct {
	payload *network.TxnPayload
	vc      network.VectorClock
}

// Manager keeps the per-order verification state. Every check ticks the
// order's clock whether it passes or not, so the final clock counts the
// steps actually taken.
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
		configs.Warn(false, "transaction checker dropped an unreadable message: "+err.Error())
		return
	}
	resp := network.NewReply(&req)
	switch req.Mark {
	case configs.InitOrder:
		m.initOrder(&req, resp)
	case configs.CheckBooks:
		m.runCheck(&req, resp, m.booksNonEmpty)
	case configs.CheckUserFields:
		m.runCheck(&req, resp, m.userFieldsPresent)
	case configs.CheckCardFormat:
		m.runCheck(&req, resp, m.cardFormatValid)
	case configs.ClearOrder:
		m.clearOrder(&req, resp)
	default:
		configs.Warn(false, "transaction checker received unknown op "+req.Mark)
		return
	}
	respBytes, err := json.Marshal(resp)
	configs.CheckError(err)
	m.stmt.conn.SendMsg(req.From, respBytes)
}

func (m *Manager) initOrder(req *network.ServiceGossip, resp *network.ServiceResponse) {
	m.latch.Lock()
	defer m.latch.Unlock()
	configs.OrderPrint(req.OrderID, "transaction state created with %v books", len(req.Txn.Books))
	m.orders[req.OrderID] = &orderRecord{
		payload: req.Txn,
		vc:      network.NewVectorClock(configs.TransactionServiceID),
	}
	resp.Success = true
	resp.VC = m.orders[req.OrderID].vc.Clone()
}

// runCheck ticks the order clock and applies one predicate to the stored
// payload. The clock moves regardless of the verdict.
func (m *Manager) runCheck(req *network.ServiceGossip, resp *network.ServiceResponse,
	check func(*network.TxnPayload) (bool, string)) {
	m.latch.Lock()
	defer m.latch.Unlock()
	rec, ok := m.orders[req.OrderID]
	if !ok {
		resp.Success = false
		resp.Reason = configs.OrderStateMissingMsg
		return
	}
	rec.vc.Tick(configs.TransactionServiceID)
	resp.Success, resp.Reason = check(rec.payload)
	resp.VC = rec.vc.Clone()
}

func (m *Manager) booksNonEmpty(p *network.TxnPayload) (bool, string) {
	if len(p.Books) == 0 {
		return false, configs.NoBooksMsg
	}
	return true, ""
}

func (m *Manager) userFieldsPresent(p *network.TxnPayload) (bool, string) {
	if p.User == nil || p.User.Name == "" || p.User.Contact == "" || p.User.Address == "" {
		return false, configs.MissingUserFieldsMsg
	}
	return true, ""
}

func (m *Manager) cardFormatValid(p *network.TxnPayload) (bool, string) {
	if len(p.CreditCard) != configs.CardNumberLength {
		return false, configs.InvalidCardFormatMsg
	}
	for _, ch := range p.CreditCard {
		if ch < '0' || ch > '9' {
			return false, configs.InvalidCardFormatMsg
		}
	}
	return true, ""
}

func (m *Manager) clearOrder(req *network.ServiceGossip, resp *network.ServiceResponse) {
	m.latch.Lock()
	defer m.latch.Unlock()
	rec, ok := m.orders[req.OrderID]
	if !ok {
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
