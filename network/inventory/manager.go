package inventory

import (
	"github.com/goccy/go-json"

	"github.com/swagata71/ds-practice-2025/configs"
	"github.com/swagata71/ds-practice-2025/network"
	"github.com/swagata71/ds-practice-2025/utils"
)

// Manager serves the stock operations of one replica. The conditional
// decrement delegates to the storage backend, which is the single
// serialization point for conflicting orders.
type Manager struct {
	stmt *Context
}

func NewManager(stmt *Context) *Manager {
	return &Manager{stmt: stmt}
}

func (m *Manager) handleRequest(requestBytes []byte) {
	if m.stmt.caller != nil && m.stmt.caller.HandleResponse(requestBytes) {
		return
	}
	var req network.ServiceGossip
	if err := json.Unmarshal(requestBytes, &req); err != nil {
		configs.Warn(false, "inventory dropped an unreadable message: "+err.Error())
		return
	}
	resp := network.NewReply(&req)
	switch req.Mark {
	case configs.ReadStock:
		m.readStock(&req, resp)
	case configs.DecrementStock:
		m.decrementStock(&req, resp)
	case configs.WriteStock:
		m.writeStock(&req, resp)
	case configs.ReplicateWrite:
		m.replicateWrite(&req, resp)
	default:
		configs.Warn(false, "inventory received unknown op "+req.Mark)
		return
	}
	respBytes, err := json.Marshal(resp)
	configs.CheckError(err)
	m.stmt.conn.SendMsg(req.From, respBytes)
}

func (m *Manager) readStock(req *network.ServiceGossip, resp *network.ServiceResponse) {
	stock, err := m.stmt.store.Read(req.Stock.Title)
	if err != nil {
		resp.Success = false
		resp.Reason = err.Error()
		return
	}
	resp.Success = true
	resp.Stock = stock
}

func (m *Manager) decrementStock(req *network.ServiceGossip, resp *network.ServiceResponse) {
	ok, remaining, err := m.stmt.store.DecrementStock(req.Stock.Title, req.Stock.Quantity)
	if err != nil {
		resp.Success = false
		resp.Reason = err.Error()
		return
	}
	configs.OrderPrint(req.OrderID, "decrement %v x%v on %s: ok=%v remaining=%v",
		req.Stock.Title, req.Stock.Quantity, m.stmt.address, ok, remaining)
	resp.Success = ok
	resp.Remaining = remaining
}

func (m *Manager) writeStock(req *network.ServiceGossip, resp *network.ServiceResponse) {
	if m.stmt.role != configs.InventoryRolePrimary {
		resp.Success = false
		resp.Reason = "write sent to a backup replica"
		return
	}
	if err := m.stmt.store.Write(req.Stock.Title, req.Stock.NewStock); err != nil {
		resp.Success = false
		resp.Reason = err.Error()
		return
	}
	m.replicate(req.OrderID, req.Stock.Title, req.Stock.NewStock)
	resp.Success = true
	resp.Stock = req.Stock.NewStock
}

// replicate pushes one write to every backup before the primary's response
// returns. A dead backup costs a warning, not the write.
func (m *Manager) replicate(orderID string, title string, newStock int32) {
	for _, backup := range m.stmt.backups {
		pack := network.NewOrderPack(configs.ReplicateWrite, utils.GetCallID(), m.stmt.address, orderID)
		pack.Stock = &network.StockPayload{Title: title, NewStock: newStock}
		reply, err := m.stmt.caller.Call(backup, pack)
		if err != nil {
			configs.Warn(false, "replication to "+backup+" failed: "+err.Error())
			continue
		}
		configs.Warn(reply.Success, "replication to "+backup+" rejected: "+reply.Reason)
	}
}

func (m *Manager) replicateWrite(req *network.ServiceGossip, resp *network.ServiceResponse) {
	if m.stmt.role == configs.InventoryRolePrimary {
		resp.Success = false
		resp.Reason = "replicated write sent to the primary"
		return
	}
	if err := m.stmt.store.Write(req.Stock.Title, req.Stock.NewStock); err != nil {
		resp.Success = false
		resp.Reason = err.Error()
		return
	}
	resp.Success = true
	resp.Stock = req.Stock.NewStock
}
