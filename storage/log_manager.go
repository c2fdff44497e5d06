package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/tidwall/wal"

	"github.com/swagata71/ds-practice-2025/configs"
)

// LogManager appends applied stock mutations to a write-ahead log. The log
// is best effort: replay on restart is not part of the service contract.
type LogManager struct {
	latch  sync.Mutex
	lsn    uint64
	logs   *wal.Log
	buffer *wal.Batch
	done   chan struct{}
}

func NewLogManager(nodeID string) *LogManager {
	res := &LogManager{}
	if !configs.UseWAL {
		return res
	}
	log, err := wal.Open(fmt.Sprintf("./logs/%s", nodeID), nil)
	if err != nil {
		panic(err)
	}
	res.logs = log
	res.lsn, err = log.LastIndex()
	if err != nil {
		panic(err)
	}
	res.buffer = &wal.Batch{}
	res.done = make(chan struct{})
	go res.localBatchSyncLogger(res.lsn)
	return res
}

func (c *LogManager) writeStock(title string, newStock int32) {
	if !configs.UseWAL {
		return
	}
	c.latch.Lock()
	defer c.latch.Unlock()
	c.lsn++
	c.buffer.Write(c.lsn, []byte(fmt.Sprintf("(w,%v,%v)", title, newStock)))
}

func (c *LogManager) writeDecrement(title string, quantity int32, remaining int32) {
	if !configs.UseWAL {
		return
	}
	c.latch.Lock()
	defer c.latch.Unlock()
	c.lsn++
	c.buffer.Write(c.lsn, []byte(fmt.Sprintf("(d,%v,%v,%v)", title, quantity, remaining)))
}

func (c *LogManager) localBatchSyncLogger(initLSN uint64) {
	lastLSN := initLSN
	for {
		select {
		case <-time.After(configs.LogBatchInterval):
			c.latch.Lock()
			if c.lsn == lastLSN || c.buffer == nil {
				c.latch.Unlock()
			} else {
				err := c.logs.WriteBatch(c.buffer)
				if err != nil {
					panic(err)
				}
				c.buffer.Clear()
				lastLSN = c.lsn
				c.latch.Unlock()
			}
		case <-c.done:
			return
		}
	}
}

func (c *LogManager) Close() {
	if !configs.UseWAL {
		return
	}
	close(c.done)
	configs.CheckError(c.logs.Close())
}
