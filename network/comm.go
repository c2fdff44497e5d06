package network

import (
	"bufio"
	"io"
	"net"
	"sync"
	"time"

	"github.com/swagata71/ds-practice-2025/configs"
)

// Comm owns one node's listener and its outbound connection map. Each
// service package supplies the dispatch callback for inbound lines.
type Comm struct {
	done     chan bool
	listener net.Listener
	dispatch func([]byte)
	connMap  *sync.Map
	sem      chan struct{}
}

func NewConns(address string, dispatch func([]byte)) *Comm {
	res := &Comm{dispatch: dispatch}
	res.connMap = &sync.Map{}
	res.done = make(chan bool, 1)
	tcpAddr, err := net.ResolveTCPAddr("tcp4", address)
	configs.CheckError(err)
	res.listener, err = net.ListenTCP("tcp", tcpAddr)
	configs.CheckError(err)
	return res
}

func (c *Comm) Run() {
	c.sem = make(chan struct{}, configs.MaxConnectionHandler)
	for {
		conn, err := c.listener.Accept()
		if err != nil {
			select {
			case <-c.done:
				return
			default:
				configs.CheckError(err)
			}
		}
		c.sem <- struct{}{}
		go func() {
			defer func() {
				<-c.sem
			}()
			c.handleRequest(conn)
		}()
	}
}

func (c *Comm) handleRequest(conn net.Conn) {
	defer conn.Close()
	reader := bufio.NewReader(conn)
	for {
		data, err := reader.ReadString('\n')
		if err == io.EOF {
			break
		}
		if err != nil {
			select {
			case <-c.done:
				return
			default:
				configs.CheckError(err)
			}
		}
		go c.dispatch([]byte(data))
	}
}

func (c *Comm) Stop() {
	c.done <- true
	c.connMap.Range(func(key, value interface{}) bool {
		_ = value.(*outConn).conn.Close()
		return true
	})
	configs.CheckError(c.listener.Close())
}

// outConn one dialed connection. The latch keeps concurrent senders from
// interleaving their lines.
type outConn struct {
	latch sync.Mutex
	conn  net.Conn
}

func (c *Comm) SendMsg(to string, msg []byte) {
	var out *outConn
	if cur, ok := c.connMap.Load(to); !ok {
		tcpAddr, err := net.ResolveTCPAddr("tcp4", to)
		configs.CheckError(err)
		newConn, err := net.DialTCP("tcp", nil, tcpAddr)
		if err != nil {
			configs.Warn(false, err.Error())
			return
		}
		fin, loaded := c.connMap.LoadOrStore(to, &outConn{conn: newConn})
		if loaded {
			_ = newConn.Close()
		}
		out = fin.(*outConn)
	} else {
		out = cur.(*outConn)
	}
	msg = append(msg, "\n"...)
	out.latch.Lock()
	defer out.latch.Unlock()
	err := out.conn.SetWriteDeadline(time.Now().Add(1 * time.Second))
	if err != nil {
		configs.Warn(false, err.Error())
	}
	_, err = out.conn.Write(msg)
	if err != nil {
		configs.Warn(false, err.Error())
	}
}

// Probe dials the address once to check the peer is accepting connections.
func Probe(address string) bool {
	conn, err := net.DialTimeout("tcp", address, time.Second)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
