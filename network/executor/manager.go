package executor

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/swagata71/ds-practice-2025/configs"
	"github.com/swagata71/ds-practice-2025/network"
	"github.com/swagata71/ds-practice-2025/utils"
)

// Manager serves the election messages of one executor replica.
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
		configs.Warn(false, "executor dropped an unreadable message: "+err.Error())
		return
	}
	resp := network.NewReply(&req)
	switch req.Mark {
	case configs.StartElection:
		m.startElection(&req, resp)
	case configs.AnnounceLeader:
		m.announceLeader(&req, resp)
	default:
		configs.Warn(false, "executor received unknown op "+req.Mark)
		return
	}
	respBytes, err := json.Marshal(resp)
	configs.CheckError(err)
	m.stmt.conn.SendMsg(req.From, respBytes)
}

// startElection acknowledges iff this replica outranks the initiator.
func (m *Manager) startElection(req *network.ServiceGossip, resp *network.ServiceResponse) {
	ctx := m.stmt
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	configs.DPrintf("replica %v got election probe from %v", ctx.replicaID, req.Vote.SenderID)
	resp.Acknowledged = ctx.replicaID > req.Vote.SenderID
	resp.Success = resp.Acknowledged
}

func (m *Manager) announceLeader(req *network.ServiceGossip, resp *network.ServiceResponse) {
	ctx := m.stmt
	ctx.mu.Lock()
	ctx.leaderID = req.Vote.LeaderID
	ctx.isLeader = ctx.replicaID == ctx.leaderID
	if ctx.isLeader {
		ctx.state = StateLeader
	} else {
		ctx.state = StateFollower
	}
	configs.DPrintf("replica %v accepts leader %v", ctx.replicaID, ctx.leaderID)
	ctx.mu.Unlock()
	select {
	case ctx.announceCh <- req.Vote.LeaderID:
	default:
	}
	resp.Success = true
	resp.Acknowledged = true
}

// elect runs one bully round. Returns true once the replica has settled as
// leader or follower; false means the announcement never arrived and the
// round must be retried.
func (ctx *Context) elect() bool {
	ctx.mu.Lock()
	ctx.state = StateElecting
	id := ctx.replicaID
	ctx.mu.Unlock()

	yielded := false
	for _, p := range ctx.peers {
		if p.ID <= id {
			continue
		}
		pack := network.NewOrderPack(configs.StartElection, utils.GetCallID(), ctx.address, "")
		pack.Vote = &network.ElectionPayload{SenderID: id}
		resp, err := ctx.caller.CallTimeout(p.Address, pack, configs.ElectionAckTimeout)
		if err != nil {
			configs.DPrintf("replica %v: no election answer from %v", id, p.ID)
			continue
		}
		if resp.Acknowledged {
			configs.DPrintf("replica %v yields to %v", id, p.ID)
			yielded = true
			break
		}
	}
	if !yielded {
		ctx.becomeLeader()
		return true
	}
	select {
	case <-ctx.announceCh:
		return true
	case <-time.After(configs.LeaderAnnounceTimeout):
		configs.Warn(false, "leader announcement never arrived, rerunning election")
		return false
	}
}

// becomeLeader installs self as leader and tells everyone.
func (ctx *Context) becomeLeader() {
	ctx.mu.Lock()
	ctx.leaderID = ctx.replicaID
	ctx.isLeader = true
	ctx.state = StateLeader
	ctx.mu.Unlock()
	configs.DPrintf("replica %v has become the leader", ctx.replicaID)
	for _, p := range ctx.peers {
		pack := network.NewOrderPack(configs.AnnounceLeader, utils.GetCallID(), ctx.address, "")
		pack.Vote = &network.ElectionPayload{SenderID: ctx.replicaID, LeaderID: ctx.replicaID}
		if _, err := ctx.caller.CallTimeout(p.Address, pack, configs.ElectionAckTimeout); err != nil {
			configs.Warn(false, "leader announcement to "+p.Address+" failed: "+err.Error())
		}
	}
}

// executionLoop drains the order queue while this replica leads. One order
// per tick; a failed decrement is reported, never retried.
func (ctx *Context) executionLoop() {
	for {
		select {
		case <-ctx.done:
			ctx.done <- true
			return
		case <-time.After(configs.ExecutorPollInterval):
			if !ctx.IsLeader() {
				continue
			}
			ctx.executeOne()
		}
	}
}

func (ctx *Context) executeOne() {
	pack := network.NewOrderPack(configs.Dequeue, utils.GetCallID(), ctx.address, "")
	resp, err := ctx.caller.Call(ctx.queueAddress, pack)
	if err != nil {
		configs.Warn(false, "dequeue failed: "+err.Error())
		return
	}
	if resp.OrderID == "" {
		configs.DPrintf("replica %v: queue empty", ctx.replicaID)
		return
	}
	orderID := resp.OrderID

	read := network.NewOrderPack(configs.ReadStock, utils.GetCallID(), ctx.address, orderID)
	read.Stock = &network.StockPayload{Title: configs.DefaultStockTitle}
	if cur, err := ctx.caller.Call(ctx.inventoryAddress, read); err == nil {
		configs.OrderPrint(orderID, "stock before execution: %v", cur.Stock)
	}

	dec := network.NewOrderPack(configs.DecrementStock, utils.GetCallID(), ctx.address, orderID)
	dec.Stock = &network.StockPayload{Title: configs.DefaultStockTitle, Quantity: 1}
	decResp, err := ctx.caller.Call(ctx.inventoryAddress, dec)
	if err != nil {
		configs.Warn(false, "decrement failed: "+err.Error())
		return
	}
	if decResp.Success {
		configs.OrderPrint(orderID, "executed, remaining stock %v", decResp.Remaining)
	} else {
		configs.OrderPrint(orderID, "out of stock, remaining %v", decResp.Remaining)
	}
}
