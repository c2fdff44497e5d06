package payment

import (
	"sync"

	"github.com/goccy/go-json"

	"github.com/swagata71/ds-practice-2025/configs"
	"github.com/swagata71/ds-practice-2025/network"
)

// Context records the runtime state of the payment stub. It acknowledges
// every prepare, commit and abort; charging real money is somebody else's
// problem.
type Context struct {
	mu      *sync.Mutex
	address string
	done    chan bool

	prepared map[string]bool
	settled  map[string]bool
	conn     *network.Comm
}

func initData(stmt *Context, address string) {
	stmt.mu = &sync.Mutex{}
	stmt.address = address
	stmt.done = make(chan bool, 1)
	stmt.prepared = make(map[string]bool)
	stmt.settled = make(map[string]bool)
}

func begin(stmt *Context, ch chan bool, address string) {
	configs.TPrintf("Initializing -- ")
	initData(stmt, address)
	stmt.conn = network.NewConns(address, stmt.handleRequest)
	configs.DPrintf("build finished for " + address)
	ch <- true
	stmt.conn.Run()
}

func (ctx *Context) handleRequest(requestBytes []byte) {
	var req network.ServiceGossip
	if err := json.Unmarshal(requestBytes, &req); err != nil {
		configs.Warn(false, "payment dropped an unreadable message: "+err.Error())
		return
	}
	resp := network.NewReply(&req)
	ctx.mu.Lock()
	switch req.Mark {
	case configs.PreparePayment:
		ctx.prepared[req.OrderID] = true
	case configs.CommitPayment:
		delete(ctx.prepared, req.OrderID)
		ctx.settled[req.OrderID] = true
	case configs.AbortPayment:
		delete(ctx.prepared, req.OrderID)
	default:
		ctx.mu.Unlock()
		configs.Warn(false, "payment received unknown op "+req.Mark)
		return
	}
	ctx.mu.Unlock()
	configs.OrderPrint(req.OrderID, "payment ack for %s", req.Mark)
	resp.Success = true
	resp.Acknowledged = true
	respBytes, err := json.Marshal(resp)
	configs.CheckError(err)
	ctx.conn.SendMsg(req.From, respBytes)
}

// Settled reports whether a commit was received for the order.
func (ctx *Context) Settled(orderID string) bool {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.settled[orderID]
}

// PreparedCount the number of orders prepared but not yet resolved.
func (ctx *Context) PreparedCount() int {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return len(ctx.prepared)
}

// Close the running payment stub.
func (ctx *Context) Close() {
	configs.TPrintf("Close called!!! at " + ctx.address)
	ctx.done <- true
	ctx.conn.Stop()
}

// Main the main function for the payment stub.
func Main(address string) {
	stmt := &Context{}
	ch := make(chan bool)
	go func() {
		<-ch
	}()
	begin(stmt, ch, address)
}

// Spawn boots the payment stub and returns once it accepts connections.
func Spawn(address string) *Context {
	stmt := &Context{}
	ch := make(chan bool)
	go begin(stmt, ch, address)
	<-ch
	return stmt
}
