package network

import (
	"time"

	"github.com/swagata71/ds-practice-2025/configs"
)

// The wire envelopes. Every request carries a Mark from configs, the
// caller's listen address in From, and a CallID echoed by the response.

// UserData the user block of an order as the transaction checker sees it.
type UserData struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Address string `json:"address"`
}

// BookItem a single order line.
type BookItem struct {
	Name     string `json:"name"`
	Quantity int32  `json:"quantity"`
}

// FraudPayload the per-order state handed to the fraud checker.
type FraudPayload struct {
	UserID string
	Amount float64
}

// TxnPayload the per-order state handed to the transaction checker.
type TxnPayload struct {
	User       *UserData
	Books      []BookItem
	CreditCard string
}

// QueuePayload an accepted order heading for the priority queue.
type QueuePayload struct {
	Amount    float64
	ItemCount int32
	UserType  string
}

// StockPayload an inventory operation.
type StockPayload struct {
	Title    string
	Quantity int32
	NewStock int32
}

// ElectionPayload a bully election message between executor replicas.
type ElectionPayload struct {
	SenderID int
	LeaderID int
}

// ServiceGossip packs one operation for transportation between nodes.
type ServiceGossip struct {
	Mark    string
	CallID  uint64
	From    string
	OrderID string

	Fraud          *FraudPayload
	Txn            *TxnPayload
	Queue          *QueuePayload
	Stock          *StockPayload
	Vote           *ElectionPayload
	PurchasedBooks []string
	FinalVC        VectorClock

	BeginTime time.Time
}

func (c *ServiceGossip) String() string {
	return c.Mark
}

// ServiceResponse answers one ServiceGossip, matched by CallID.
type ServiceResponse struct {
	Mark    string
	Op      string
	CallID  uint64
	OrderID string
	From    string

	Success      bool
	Reason       string
	Acknowledged bool
	VC           VectorClock
	Suggested    []string
	Stock        int32
	Remaining    int32

	BeginTime time.Time
}

// NewOrderPack create an operation envelope for one order conversation.
func NewOrderPack(mark string, callID uint64, from string, orderID string) *ServiceGossip {
	return &ServiceGossip{
		Mark:      mark,
		CallID:    callID,
		From:      from,
		OrderID:   orderID,
		BeginTime: time.Now(),
	}
}

// NewReply create the response envelope for a received gossip.
func NewReply(req *ServiceGossip) *ServiceResponse {
	return &ServiceResponse{
		Mark:      configs.OpReply,
		Op:        req.Mark,
		CallID:    req.CallID,
		OrderID:   req.OrderID,
		BeginTime: req.BeginTime,
	}
}
