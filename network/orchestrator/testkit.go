package orchestrator

import (
	"fmt"

	"github.com/swagata71/ds-practice-2025/configs"
	"github.com/swagata71/ds-practice-2025/network/executor"
	"github.com/swagata71/ds-practice-2025/network/fraud"
	"github.com/swagata71/ds-practice-2025/network/inventory"
	"github.com/swagata71/ds-practice-2025/network/payment"
	"github.com/swagata71/ds-practice-2025/network/queue"
	"github.com/swagata71/ds-practice-2025/network/suggestions"
	"github.com/swagata71/ds-practice-2025/network/transaction"
)

// LocalKit an in-process deployment of the whole pipeline on loopback
// ports, for tests and local runs.
type LocalKit struct {
	Fraud        *fraud.Context
	Transaction  *transaction.Context
	Suggestions  *suggestions.Context
	Queue        *queue.Context
	Payment      *payment.Context
	Primary      *inventory.Context
	Backup       *inventory.Context
	Executors    []*executor.Context
	Orchestrator *Context
}

// NewLocalKit boots every service on the configured addresses plus three
// executor replicas. Replica 3 ends up leading.
func NewLocalKit(executorBasePort int) *LocalKit {
	configs.SetLocal()
	configs.EnablePayment2PC = true
	k := &LocalKit{}
	k.Fraud = fraud.Spawn(configs.FraudAddress)
	k.Transaction = transaction.Spawn(configs.TransactionAddress)
	k.Suggestions = suggestions.Spawn(configs.SuggestionsAddress)
	k.Queue = queue.Spawn(configs.QueueAddress)
	k.Payment = payment.Spawn(configs.PaymentAddress)
	k.Primary = inventory.Spawn(configs.InventoryAddress, configs.InventoryRolePrimary,
		[]string{configs.InventoryBackupAddress})
	k.Backup = inventory.Spawn(configs.InventoryBackupAddress, configs.InventoryRoleBackup, nil)

	addrs := make(map[int]string)
	for id := 1; id <= 3; id++ {
		addrs[id] = fmt.Sprintf("127.0.0.1:%d", executorBasePort+id)
	}
	for id := 1; id <= 3; id++ {
		peers := make([]executor.Peer, 0, 2)
		for pid, addr := range addrs {
			if pid != id {
				peers = append(peers, executor.Peer{ID: pid, Address: addr})
			}
		}
		k.Executors = append(k.Executors,
			executor.Spawn(addrs[id], id, peers, configs.QueueAddress, configs.InventoryAddress))
	}
	k.Orchestrator = Spawn()
	return k
}

func (k *LocalKit) Close() {
	k.Orchestrator.Close()
	for _, e := range k.Executors {
		e.Close()
	}
	k.Primary.Close()
	k.Backup.Close()
	k.Payment.Close()
	k.Queue.Close()
	k.Suggestions.Close()
	k.Transaction.Close()
	k.Fraud.Close()
}
