package storage

import (
	lock "github.com/viney-shih/go-lock"

	"github.com/swagata71/ds-practice-2025/configs"
)

// BookStore is one replica's view of the title -> stock map. DecrementStock
// is the atomic conditional write: it succeeds only while enough stock
// remains, so at most one of N racing decrements of a single copy wins.
type BookStore interface {
	Read(title string) (int32, error)
	Write(title string, newStock int32) error
	DecrementStock(title string, quantity int32) (bool, int32, error)
	Close()
}

// MemoryStore the default in-memory backend.
type MemoryStore struct {
	nodeID string
	latch  lock.Mutex
	books  map[string]int32
	log    *LogManager
}

func NewStore(nodeID string, storeType string) BookStore {
	switch storeType {
	case configs.MemoryStorage:
		return NewMemoryStore(nodeID)
	case configs.MongoDB:
		return NewMongoStore(nodeID)
	case configs.PostgreSQL:
		return NewSQLStore(nodeID)
	default:
		panic("invalid storage type " + storeType)
	}
}

func NewMemoryStore(nodeID string) *MemoryStore {
	return &MemoryStore{
		nodeID: nodeID,
		latch:  lock.NewCASMutex(),
		books:  make(map[string]int32),
		log:    NewLogManager(nodeID),
	}
}

func (c *MemoryStore) Read(title string) (int32, error) {
	c.latch.Lock()
	defer c.latch.Unlock()
	return c.books[title], nil
}

func (c *MemoryStore) Write(title string, newStock int32) error {
	c.latch.Lock()
	defer c.latch.Unlock()
	c.books[title] = newStock
	c.log.writeStock(title, newStock)
	return nil
}

func (c *MemoryStore) DecrementStock(title string, quantity int32) (bool, int32, error) {
	c.latch.Lock()
	defer c.latch.Unlock()
	available := c.books[title]
	if available >= quantity {
		c.books[title] = available - quantity
		c.log.writeDecrement(title, quantity, c.books[title])
		return true, c.books[title], nil
	}
	return false, available, nil
}

func (c *MemoryStore) Close() {
	c.log.Close()
}
