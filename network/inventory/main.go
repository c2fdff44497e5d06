package inventory

import (
	"sync"

	"github.com/swagata71/ds-practice-2025/configs"
	"github.com/swagata71/ds-practice-2025/network"
	"github.com/swagata71/ds-practice-2025/storage"
)

// Context records the runtime state of one inventory replica. The role is
// fixed at startup; only the primary accepts Write and fans it out to the
// backup peers.
type Context struct {
	mu      *sync.Mutex
	address string
	role    string
	backups []string
	done    chan bool

	Manager *Manager
	store   storage.BookStore
	conn    *network.Comm
	caller  *network.Caller
}

func initData(stmt *Context, address string, role string, backups []string) {
	configs.Assert(role == configs.InventoryRolePrimary || role == configs.InventoryRoleBackup,
		"invalid inventory role "+role)
	stmt.mu = &sync.Mutex{}
	stmt.address = address
	stmt.role = role
	stmt.backups = backups
	stmt.done = make(chan bool, 1)
	stmt.store = storage.NewStore(address, configs.StorageType)
	stmt.Manager = NewManager(stmt)
}

func begin(stmt *Context, ch chan bool, address string, role string, backups []string) {
	configs.TPrintf("Initializing -- ")
	initData(stmt, address, role, backups)
	stmt.conn = network.NewConns(address, stmt.Manager.handleRequest)
	stmt.caller = network.NewCaller(address, stmt.conn)
	// seed stock so a fresh deployment can sell something.
	configs.CheckError(stmt.store.Write(configs.DefaultStockTitle, configs.DefaultStockAmount))
	configs.DPrintf("build finished for " + address)
	ch <- true
	stmt.conn.Run()
}

// Close the running inventory replica.
func (ctx *Context) Close() {
	configs.TPrintf("Close called!!! at " + ctx.address)
	ctx.done <- true
	ctx.caller.Close()
	ctx.conn.Stop()
	ctx.store.Close()
}

// Main the main function for an inventory replica.
func Main(address string, role string, backups []string) {
	stmt := &Context{}
	ch := make(chan bool)
	go func() {
		<-ch
	}()
	begin(stmt, ch, address, role, backups)
}

// Spawn boots an inventory replica and returns once it accepts connections.
func Spawn(address string, role string, backups []string) *Context {
	stmt := &Context{}
	ch := make(chan bool)
	go begin(stmt, ch, address, role, backups)
	<-ch
	return stmt
}
