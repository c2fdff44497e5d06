package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/swagata71/ds-practice-2025/benchmark"
	"github.com/swagata71/ds-practice-2025/configs"
	"github.com/swagata71/ds-practice-2025/network/executor"
	"github.com/swagata71/ds-practice-2025/network/fraud"
	"github.com/swagata71/ds-practice-2025/network/inventory"
	"github.com/swagata71/ds-practice-2025/network/orchestrator"
	"github.com/swagata71/ds-practice-2025/network/payment"
	"github.com/swagata71/ds-practice-2025/network/queue"
	"github.com/swagata71/ds-practice-2025/network/suggestions"
	"github.com/swagata71/ds-practice-2025/network/transaction"
)

var (
	node      string
	addr      string
	httpAddr  string
	role      string
	backups   string
	peers     string
	replicaID int
	store     string
	pay       bool
	wal       bool
	debug     bool
	local     bool
	con       int
	duration  int
	fraudRate float64
	sk        float64
)

func usage() {
	flag.PrintDefaults()
}

func init() {
	flag.StringVar(&node, "node", "", "the node to start: fraud | transaction | suggestions | queue | executor | inventory | payment | orchestrator | bench")
	flag.StringVar(&addr, "addr", "", "the RPC address for this node (defaults per node role)")
	flag.StringVar(&httpAddr, "http", "", "the orchestrator HTTP address")
	flag.StringVar(&role, "role", configs.InventoryRolePrimary, "the inventory role: primary | backup")
	flag.StringVar(&backups, "backups", "", "comma separated backup addresses for the inventory primary")
	flag.StringVar(&peers, "peers", "", "comma separated executor peers, id@host:port")
	flag.IntVar(&replicaID, "id", 0, "the executor replica id")
	flag.StringVar(&store, "store", configs.MemoryStorage, "the inventory storage backend: memory | mongo | sql")
	flag.BoolVar(&pay, "payment", false, "run the prepare/commit pair against the payment stub on accepted orders")
	flag.BoolVar(&wal, "wal", false, "append stock mutations to a write-ahead log")
	flag.BoolVar(&debug, "debug", false, "log debug info")
	flag.BoolVar(&local, "local", false, "run local test")
	flag.IntVar(&con, "c", 8, "the number of bench clients")
	flag.IntVar(&duration, "t", 60, "the bench duration in seconds")
	flag.Float64Var(&fraudRate, "fraud", 0.05, "the share of bench orders priced over the fraud threshold")
	flag.Float64Var(&sk, "skew", 0.5, "the skew factor for bench title selection")
	flag.Usage = usage
}

// parsePeers parses "1@host:port,2@host:port" into the executor peer set.
func parsePeers(raw string) []executor.Peer {
	res := make([]executor.Peer, 0)
	if raw == "" {
		return res
	}
	for _, item := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(item), "@", 2)
		if len(parts) != 2 {
			panic("invalid peer " + item + ", want id@host:port")
		}
		id, err := strconv.Atoi(parts[0])
		configs.CheckError(err)
		res = append(res, executor.Peer{ID: id, Address: parts[1]})
	}
	return res
}

func defaultAddr(node string) string {
	switch node {
	case "fraud":
		return configs.FraudAddress
	case "transaction":
		return configs.TransactionAddress
	case "suggestions":
		return configs.SuggestionsAddress
	case "queue":
		return configs.QueueAddress
	case "executor":
		return configs.ExecutorAddress
	case "inventory":
		return configs.InventoryAddress
	case "payment":
		return configs.PaymentAddress
	default:
		return ""
	}
}

// resolveAddr picks the listen address: the -addr flag, then the port
// environment overrides, then the per-node default. Executor replicas
// honor REPLICA_PORT so one compose template can place each replica.
func resolveAddr(node string, flagAddr string) string {
	res := flagAddr
	if res == "" {
		res = defaultAddr(node)
	}
	if port := configs.EnvString(configs.EnvPort, ""); port != "" {
		res = "0.0.0.0:" + port
	}
	if node == "executor" {
		if port := configs.EnvString(configs.EnvReplicaPort, ""); port != "" {
			res = "0.0.0.0:" + port
		}
	}
	return res
}

func main() {
	flag.Parse()
	if debug {
		f, err := os.OpenFile(fmt.Sprintf("logs/logfiles_%v.log", time.Now().String()), os.O_RDWR|os.O_CREATE, 0666)
		defer f.Close()
		if err != nil {
			log.Fatalf("error opening file: %v", err)
		}
		log.SetOutput(io.Writer(f))
		configs.ShowDebugInfo = true
		configs.ShowWarnings = true
		configs.ShowTestInfo = true
	}
	if local {
		configs.SetLocal()
	}
	configs.StorageType = store
	configs.UseWAL = wal
	configs.EnablePayment2PC = pay

	// container deployments override the flags through the environment.
	node = configs.EnvString("NODE", node)
	role = configs.EnvString(configs.EnvRole, role)
	replicaID = configs.EnvInt(configs.EnvReplicaID, replicaID)
	addr = resolveAddr(node, addr)
	if httpAddr != "" {
		configs.OrchestratorHTTPAddress = httpAddr
	}
	backupList := configs.EnvAddressList(configs.EnvBackupPeers)
	if len(backupList) == 0 && backups != "" {
		backupList = strings.Split(backups, ",")
	}
	peerSpec := configs.EnvString(configs.EnvPeers, peers)

	switch node {
	case "fraud":
		fraud.Main(addr)
	case "transaction":
		transaction.Main(addr)
	case "suggestions":
		suggestions.Main(addr)
	case "queue":
		queue.Main(addr)
	case "payment":
		payment.Main(addr)
	case "inventory":
		inventory.Main(addr, role, backupList)
	case "executor":
		executor.Main(addr, replicaID, parsePeers(peerSpec), configs.QueueAddress, configs.InventoryAddress)
	case "orchestrator":
		orchestrator.Main()
	case "bench":
		stmt := benchmark.NewCheckoutStmt(configs.OrchestratorHTTPAddress)
		stmt.FraudRate = fraudRate
		stmt.Skewness = sk
		stmt.CheckoutTest(con, time.Duration(duration)*time.Second)
	default:
		panic("invalid parameter for node, want one of fraud | transaction | suggestions | queue | executor | inventory | payment | orchestrator | bench")
	}
}
