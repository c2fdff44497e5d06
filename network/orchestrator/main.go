package orchestrator

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swagata71/ds-practice-2025/configs"
	"github.com/swagata71/ds-practice-2025/network"
)

// Context records the runtime state of the orchestrator: the HTTP surface
// plus one RPC caller shared by every checkout.
type Context struct {
	httpAddress string

	fraudAddress       string
	transactionAddress string
	suggestionsAddress string
	queueAddress       string
	paymentAddress     string

	caller *network.Caller
	server *http.Server
}

// NewContext wires the orchestrator against the default service addresses.
func NewContext() *Context {
	return &Context{
		httpAddress:        configs.OrchestratorHTTPAddress,
		fraudAddress:       configs.FraudAddress,
		transactionAddress: configs.TransactionAddress,
		suggestionsAddress: configs.SuggestionsAddress,
		queueAddress:       configs.QueueAddress,
		paymentAddress:     configs.PaymentAddress,
	}
}

func (ctx *Context) router() *gin.Engine {
	if !configs.ShowDebugInfo {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.POST("/checkout", ctx.checkout)
	return router
}

func (ctx *Context) begin(ch chan bool) {
	ctx.caller = network.NewClient(configs.OrchestratorAddress)
	ln, err := net.Listen("tcp", ctx.httpAddress)
	configs.CheckError(err)
	ctx.server = &http.Server{Handler: ctx.router()}
	configs.DPrintf("orchestrator serving on " + ctx.httpAddress)
	ch <- true
	if err := ctx.server.Serve(ln); err != http.ErrServerClosed {
		configs.CheckError(err)
	}
}

// Close the running orchestrator.
func (ctx *Context) Close() {
	configs.TPrintf("Close called!!! at " + ctx.httpAddress)
	_ = ctx.server.Close()
	ctx.caller.Close()
}

// Main the main function for the orchestrator process.
func Main() {
	ctx := NewContext()
	ch := make(chan bool)
	go func() {
		<-ch
	}()
	ctx.begin(ch)
}

// Spawn boots the orchestrator and returns once the HTTP listener is up.
func Spawn() *Context {
	ctx := NewContext()
	ch := make(chan bool)
	go ctx.begin(ch)
	<-ch
	return ctx
}
