package orchestrator

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/swagata71/ds-practice-2025/configs"
	"github.com/swagata71/ds-practice-2025/network"
	"github.com/swagata71/ds-practice-2025/utils"
)

type fraudVerdict struct {
	fraudulent bool
	finalVC    network.VectorClock
}

type txnVerdict struct {
	valid   bool
	reason  string
	finalVC network.VectorClock
}

// checkout drives one order through the pipeline: fraud, verification and
// suggestions fan out in parallel, the fraud verdict can short-circuit the
// rest, and an accepted order ends up in the priority queue.
func (ctx *Context) checkout(c *gin.Context) {
	var order Order
	if err := c.ShouldBindJSON(&order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if order.OrderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing order_id in request"})
		return
	}
	configs.OrderPrint(order.OrderID, "checkout received, amount %v", order.Amount)

	fraudCh := make(chan fraudVerdict, 1)
	txnCh := make(chan txnVerdict, 1)
	suggCh := make(chan []string, 1)
	go func() { fraudCh <- ctx.fraudFlow(&order) }()
	go func() { txnCh <- ctx.transactionFlow(&order) }()
	go func() { suggCh <- ctx.suggestionsLookup(&order) }()

	fraud := <-fraudCh
	if fraud.fraudulent {
		configs.OrderPrint(order.OrderID, "rejected: fraud")
		c.JSON(http.StatusBadRequest, RejectResponse{Status: "rejected", Reason: configs.FraudDetectedMsg})
		return
	}
	txn := <-txnCh
	if !txn.valid {
		configs.OrderPrint(order.OrderID, "rejected: %s", txn.reason)
		c.JSON(http.StatusBadRequest, RejectResponse{Status: "rejected", Reason: txn.reason})
		return
	}
	suggested := <-suggCh

	if err := ctx.enqueue(&order); err != nil {
		configs.OrderPrint(order.OrderID, "enqueue failed: %s", err.Error())
		c.JSON(http.StatusInternalServerError, RejectResponse{Status: "error", Reason: err.Error()})
		return
	}
	if configs.EnablePayment2PC {
		ctx.settlePayment(order.OrderID)
	}
	go ctx.finalize(order.OrderID, fraud.finalVC, txn.finalVC)

	books := make([]SuggestedBook, 0, len(suggested))
	for _, title := range suggested {
		books = append(books, SuggestedBook{Title: title})
	}
	c.JSON(http.StatusOK, CheckoutResponse{
		OrderID:        order.OrderID,
		Status:         "Order Approved",
		SuggestedBooks: books,
	})
}

// fraudFlow runs the three-step fraud conversation. Any transport failure
// counts as fraudulent; guilty until proven reachable.
func (ctx *Context) fraudFlow(order *Order) fraudVerdict {
	init := network.NewOrderPack(configs.InitOrder, utils.GetCallID(), "", order.OrderID)
	init.Fraud = &network.FraudPayload{UserID: order.UserID, Amount: order.Amount}
	resp, err := ctx.caller.Call(ctx.fraudAddress, init)
	if err != nil || !resp.Success {
		return fraudVerdict{fraudulent: true}
	}
	vc := resp.VC
	for _, mark := range []string{configs.CheckUserFraud, configs.CheckCardFraud} {
		pack := network.NewOrderPack(mark, utils.GetCallID(), "", order.OrderID)
		resp, err = ctx.caller.Call(ctx.fraudAddress, pack)
		if err != nil || !resp.Success {
			return fraudVerdict{fraudulent: true}
		}
		vc = resp.VC
	}
	return fraudVerdict{fraudulent: false, finalVC: vc}
}

// transactionFlow initializes the checker state and walks the three field
// checks in order, carrying the first failure message out.
func (ctx *Context) transactionFlow(order *Order) txnVerdict {
	init := network.NewOrderPack(configs.InitOrder, utils.GetCallID(), "", order.OrderID)
	init.Txn = &network.TxnPayload{
		User:       ctx.userData(order),
		Books:      ctx.bookItems(order),
		CreditCard: normalizeCard(order.CreditCard.Number),
	}
	resp, err := ctx.caller.Call(ctx.transactionAddress, init)
	if err != nil {
		return txnVerdict{valid: false, reason: err.Error()}
	}
	if !resp.Success {
		return txnVerdict{valid: false, reason: resp.Reason}
	}
	vc := resp.VC
	for _, mark := range []string{configs.CheckBooks, configs.CheckUserFields, configs.CheckCardFormat} {
		pack := network.NewOrderPack(mark, utils.GetCallID(), "", order.OrderID)
		resp, err = ctx.caller.Call(ctx.transactionAddress, pack)
		if err != nil {
			return txnVerdict{valid: false, reason: err.Error()}
		}
		if !resp.Success {
			return txnVerdict{valid: false, reason: resp.Reason, finalVC: resp.VC}
		}
		vc = resp.VC
	}
	return txnVerdict{valid: true, finalVC: vc}
}

func (ctx *Context) suggestionsLookup(order *Order) []string {
	pack := network.NewOrderPack(configs.GetSuggestions, utils.GetCallID(), "", order.OrderID)
	pack.PurchasedBooks = make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		pack.PurchasedBooks = append(pack.PurchasedBooks, item.Name)
	}
	resp, err := ctx.caller.Call(ctx.suggestionsAddress, pack)
	if err != nil || !resp.Success {
		configs.OrderPrint(order.OrderID, "suggestions unavailable")
		return nil
	}
	return resp.Suggested
}

func (ctx *Context) enqueue(order *Order) error {
	itemCount := int32(0)
	for _, item := range order.Items {
		itemCount += item.Quantity
	}
	userType := order.UserType
	if userType == "" {
		userType = configs.RegularUserType
	}
	pack := network.NewOrderPack(configs.Enqueue, utils.GetCallID(), "", order.OrderID)
	pack.Queue = &network.QueuePayload{Amount: order.Amount, ItemCount: itemCount, UserType: userType}
	resp, err := ctx.caller.Call(ctx.queueAddress, pack)
	if err != nil {
		return err
	}
	if !resp.Success {
		return errors.New(resp.Reason)
	}
	return nil
}

// settlePayment runs the best-effort prepare/commit pair against the
// payment stub. A refusal aborts the payment but not the order.
func (ctx *Context) settlePayment(orderID string) {
	prepare := network.NewOrderPack(configs.PreparePayment, utils.GetCallID(), "", orderID)
	resp, err := ctx.caller.Call(ctx.paymentAddress, prepare)
	if err != nil || !resp.Acknowledged {
		configs.Warn(false, "payment prepare failed for "+orderID)
		abort := network.NewOrderPack(configs.AbortPayment, utils.GetCallID(), "", orderID)
		_, _ = ctx.caller.Call(ctx.paymentAddress, abort)
		return
	}
	commit := network.NewOrderPack(configs.CommitPayment, utils.GetCallID(), "", orderID)
	if _, err = ctx.caller.Call(ctx.paymentAddress, commit); err != nil {
		configs.Warn(false, "payment commit failed for "+orderID)
	}
}

// finalize broadcasts the merged final clock of both checker flows as a
// ClearOrder once the order is safely queued. Best effort; a missed clear
// only leaves a stale record behind.
func (ctx *Context) finalize(orderID string, fraudVC network.VectorClock, txnVC network.VectorClock) {
	final := fraudVC.Clone().Merge(txnVC)
	for _, addr := range []string{ctx.fraudAddress, ctx.transactionAddress} {
		pack := network.NewOrderPack(configs.ClearOrder, utils.GetCallID(), "", orderID)
		pack.FinalVC = final
		resp, err := ctx.caller.Call(addr, pack)
		if err != nil {
			configs.Warn(false, "clear order failed on "+addr+": "+err.Error())
			continue
		}
		configs.Warn(resp.Success, "clear order on "+addr+": "+resp.Reason)
	}
}

func (ctx *Context) userData(order *Order) *network.UserData {
	address := order.User.Address
	if address == "" && order.BillingAddress.Street != "" {
		address = strings.TrimSpace(order.BillingAddress.Street + " " + order.BillingAddress.City)
	}
	return &network.UserData{Name: order.User.Name, Contact: order.User.Contact, Address: address}
}

func (ctx *Context) bookItems(order *Order) []network.BookItem {
	books := make([]network.BookItem, 0, len(order.Items))
	for _, item := range order.Items {
		books = append(books, network.BookItem{Name: item.Name, Quantity: item.Quantity})
	}
	return books
}

// normalizeCard strips the separators people type into card numbers.
func normalizeCard(number string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(number)
}
