package executor

import (
	"sync"
	"time"

	"github.com/swagata71/ds-practice-2025/configs"
	"github.com/swagata71/ds-practice-2025/network"
)

// Replica states.
const (
	StateBooting  = "booting"
	StateElecting = "electing"
	StateFollower = "follower"
	StateLeader   = "leader"
)

// Peer one fellow executor replica.
type Peer struct {
	ID      int
	Address string
}

// Context records the runtime state of one executor replica. Only the
// elected leader drains the order queue.
type Context struct {
	mu        sync.Mutex
	address   string
	replicaID int
	peers     []Peer
	leaderID  int
	isLeader  bool
	state     string

	queueAddress     string
	inventoryAddress string

	announceCh chan int
	done       chan bool
	Manager    *Manager
	conn       *network.Comm
	caller     *network.Caller
}

func initData(stmt *Context, address string, replicaID int, peers []Peer) {
	stmt.address = address
	stmt.replicaID = replicaID
	stmt.peers = peers
	stmt.leaderID = -1
	stmt.state = StateBooting
	stmt.announceCh = make(chan int, 1)
	stmt.done = make(chan bool, 1)
	stmt.Manager = NewManager(stmt)
}

func begin(stmt *Context, ch chan bool, address string, replicaID int, peers []Peer,
	queueAddress string, inventoryAddress string) {
	configs.TPrintf("Initializing -- ")
	initData(stmt, address, replicaID, peers)
	stmt.queueAddress = queueAddress
	stmt.inventoryAddress = inventoryAddress
	stmt.conn = network.NewConns(address, stmt.Manager.handleRequest)
	stmt.caller = network.NewCaller(address, stmt.conn)
	configs.DPrintf("build finished for " + address)
	go stmt.run()
	go stmt.executionLoop()
	ch <- true
	stmt.conn.Run()
}

// Close the running executor replica.
func (ctx *Context) Close() {
	configs.TPrintf("Close called!!! at " + ctx.address)
	ctx.done <- true
	ctx.caller.Close()
	ctx.conn.Stop()
}

// Main the main function for an executor replica.
func Main(address string, replicaID int, peers []Peer, queueAddress string, inventoryAddress string) {
	stmt := &Context{}
	ch := make(chan bool)
	go func() {
		<-ch
	}()
	begin(stmt, ch, address, replicaID, peers, queueAddress, inventoryAddress)
}

// Spawn boots an executor replica and returns once it accepts connections.
func Spawn(address string, replicaID int, peers []Peer, queueAddress string, inventoryAddress string) *Context {
	stmt := &Context{}
	ch := make(chan bool)
	go begin(stmt, ch, address, replicaID, peers, queueAddress, inventoryAddress)
	<-ch
	return stmt
}

// run waits for the peer set to come up, then keeps electing until the
// replica settles as leader or follower.
func (ctx *Context) run() {
	ctx.waitForPeers()
	for !ctx.elect() {
		select {
		case <-ctx.done:
			ctx.done <- true
			return
		default:
		}
	}
}

// waitForPeers probes every peer's listener, retrying a bounded number of
// times. The election proceeds either way once the retries run out.
func (ctx *Context) waitForPeers() {
	for try := 0; try < configs.PeerProbeRetries; try++ {
		ready := true
		for _, p := range ctx.peers {
			if !network.Probe(p.Address) {
				ready = false
				break
			}
		}
		if ready {
			return
		}
		configs.DPrintf("replica %v waiting for peers, retry %v", ctx.replicaID, try+1)
		time.Sleep(configs.PeerProbeInterval)
	}
}

// State returns the replica's current state string.
func (ctx *Context) State() string {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.state
}

// LeaderID returns the last announced leader, -1 before any election ends.
func (ctx *Context) LeaderID() int {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.leaderID
}

// IsLeader reports whether this replica won the election.
func (ctx *Context) IsLeader() bool {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.isLeader
}
