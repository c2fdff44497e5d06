package network

import (
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/swagata71/ds-practice-2025/configs"
)

// ErrCallTimeout the peer did not answer within configs.CallTimeout.
var ErrCallTimeout = errors.New("rpc call timed out")

// Caller issues request/response conversations over a Comm. Responses come
// back on the caller's own listener and are matched by CallID.
type Caller struct {
	address string
	conn    *Comm
	ownConn bool
	pending *sync.Map
	done    chan struct{}
}

func NewCaller(address string, conn *Comm) *Caller {
	return &Caller{
		address: address,
		conn:    conn,
		pending: &sync.Map{},
		done:    make(chan struct{}),
	}
}

// NewClient boots a Caller with its own listener whose only job is
// receiving responses. Blocks until the listener accepts connections.
func NewClient(address string) *Caller {
	c := &Caller{
		address: address,
		ownConn: true,
		pending: &sync.Map{},
		done:    make(chan struct{}),
	}
	c.conn = NewConns(address, func(requestBytes []byte) {
		c.HandleResponse(requestBytes)
	})
	go c.conn.Run()
	return c
}

// HandleResponse pends an inbound response line to the waiting call, if
// any. Late responses after a timeout are dropped.
func (c *Caller) HandleResponse(requestBytes []byte) bool {
	var resp ServiceResponse
	err := json.Unmarshal(requestBytes, &resp)
	if err != nil {
		return false
	}
	if resp.Mark != configs.OpReply {
		return false
	}
	ch, ok := c.pending.Load(resp.CallID)
	if !ok {
		configs.TPrintf("ORD[%s]: received a response without handler", resp.OrderID)
		return true
	}
	select {
	case ch.(chan *ServiceResponse) <- &resp:
	default:
	}
	return true
}

// Call sends one gossip to a peer and blocks for the matching response.
func (c *Caller) Call(to string, msg *ServiceGossip) (*ServiceResponse, error) {
	return c.CallTimeout(to, msg, configs.CallTimeout)
}

func (c *Caller) CallTimeout(to string, msg *ServiceGossip, timeout time.Duration) (*ServiceResponse, error) {
	msg.From = c.address
	finish := make(chan *ServiceResponse, 1)
	c.pending.Store(msg.CallID, finish)
	defer c.pending.Delete(msg.CallID)
	msgBytes, err := json.Marshal(msg)
	configs.CheckError(err)
	configs.OrderPrint(msg.OrderID, "send message for %s with Mark %s", to, msg.Mark)
	c.conn.SendMsg(to, msgBytes)
	select {
	case resp := <-finish:
		return resp, nil
	case <-time.After(timeout):
		return nil, ErrCallTimeout
	case <-c.done:
		return nil, ErrCallTimeout
	}
}

// Notify sends one gossip without waiting for a response.
func (c *Caller) Notify(to string, msg *ServiceGossip) {
	msg.From = c.address
	msgBytes, err := json.Marshal(msg)
	configs.CheckError(err)
	c.conn.SendMsg(to, msgBytes)
}

func (c *Caller) Close() {
	close(c.done)
	if c.ownConn {
		c.conn.Stop()
	}
}
