package suggestions

import (
	"sync"

	"github.com/swagata71/ds-practice-2025/configs"
	"github.com/swagata71/ds-practice-2025/network"
)

// Context records the runtime state of one suggestions process.
type Context struct {
	mu      *sync.Mutex
	address string
	done    chan bool

	Manager *Manager
	conn    *network.Comm
}

func initData(stmt *Context, address string) {
	stmt.mu = &sync.Mutex{}
	stmt.address = address
	stmt.done = make(chan bool, 1)
	stmt.Manager = NewManager(stmt)
}

func begin(stmt *Context, ch chan bool, address string) {
	configs.TPrintf("Initializing -- ")
	initData(stmt, address)
	stmt.conn = network.NewConns(address, stmt.Manager.handleRequest)
	configs.DPrintf("build finished for " + address)
	ch <- true
	stmt.conn.Run()
}

// Close the running suggestions process.
func (ctx *Context) Close() {
	configs.TPrintf("Close called!!! at " + ctx.address)
	ctx.done <- true
	ctx.conn.Stop()
}

// Main the main function for a suggestions process.
func Main(address string) {
	stmt := &Context{}
	ch := make(chan bool)
	go func() {
		<-ch
	}()
	begin(stmt, ch, address)
}

// Spawn boots a suggestions service and returns once it accepts connections.
func Spawn(address string) *Context {
	stmt := &Context{}
	ch := make(chan bool)
	go begin(stmt, ch, address)
	<-ch
	return stmt
}
