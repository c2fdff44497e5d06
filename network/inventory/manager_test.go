package inventory

import (
	"testing"
	"time"

	"github.com/magiconair/properties/assert"
	"github.com/stretchr/testify/require"

	"github.com/swagata71/ds-practice-2025/configs"
	"github.com/swagata71/ds-practice-2025/network"
	"github.com/swagata71/ds-practice-2025/storage"
	"github.com/swagata71/ds-practice-2025/utils"
)

func newLocalReplica(role string) *Context {
	stmt := &Context{
		address: "local-" + role,
		role:    role,
		store:   storage.NewMemoryStore("local-" + role),
	}
	stmt.Manager = NewManager(stmt)
	return stmt
}

func stockPack(mark string, title string, qty int32, newStock int32) *network.ServiceGossip {
	req := network.NewOrderPack(mark, utils.GetCallID(), "test", "o1")
	req.Stock = &network.StockPayload{Title: title, Quantity: qty, NewStock: newStock}
	return req
}

func TestReadAbsentTitle(t *testing.T) {
	stmt := newLocalReplica(configs.InventoryRolePrimary)
	defer stmt.store.Close()
	req := stockPack(configs.ReadStock, "Book Z", 0, 0)
	resp := network.NewReply(req)
	stmt.Manager.readStock(req, resp)
	assert.Equal(t, resp.Success, true)
	assert.Equal(t, resp.Stock, int32(0))
}

func TestDecrementOnReplica(t *testing.T) {
	stmt := newLocalReplica(configs.InventoryRolePrimary)
	defer stmt.store.Close()
	require.NoError(t, stmt.store.Write("Book A", 1))

	req := stockPack(configs.DecrementStock, "Book A", 1, 0)
	resp := network.NewReply(req)
	stmt.Manager.decrementStock(req, resp)
	assert.Equal(t, resp.Success, true)
	assert.Equal(t, resp.Remaining, int32(0))

	resp = network.NewReply(req)
	stmt.Manager.decrementStock(req, resp)
	assert.Equal(t, resp.Success, false)
	assert.Equal(t, resp.Remaining, int32(0))
}

func TestWriteRejectedOnBackup(t *testing.T) {
	stmt := newLocalReplica(configs.InventoryRoleBackup)
	defer stmt.store.Close()
	req := stockPack(configs.WriteStock, "Book A", 0, 7)
	resp := network.NewReply(req)
	stmt.Manager.writeStock(req, resp)
	assert.Equal(t, resp.Success, false)
}

func TestReplicateWriteRejectedOnPrimary(t *testing.T) {
	stmt := newLocalReplica(configs.InventoryRolePrimary)
	defer stmt.store.Close()
	req := stockPack(configs.ReplicateWrite, "Book A", 0, 7)
	resp := network.NewReply(req)
	stmt.Manager.replicateWrite(req, resp)
	assert.Equal(t, resp.Success, false)
}

// Boots a primary with two backups on loopback ports and checks that a
// primary write lands on every backup before the response comes back.
func TestPrimaryBackupReplication(t *testing.T) {
	configs.SetLocal()
	primary := "127.0.0.1:60157"
	backups := []string{"127.0.0.1:60158", "127.0.0.1:60159"}
	p := Spawn(primary, configs.InventoryRolePrimary, backups)
	b1 := Spawn(backups[0], configs.InventoryRoleBackup, nil)
	b2 := Spawn(backups[1], configs.InventoryRoleBackup, nil)
	defer p.Close()
	defer b1.Close()
	defer b2.Close()

	client := network.NewClient("127.0.0.1:60150")
	defer client.Close()
	time.Sleep(100 * time.Millisecond)

	req := stockPack(configs.WriteStock, "Book B", 0, 5)
	resp, err := client.Call(primary, req)
	require.NoError(t, err)
	assert.Equal(t, resp.Success, true)

	for _, addr := range append([]string{primary}, backups...) {
		req = stockPack(configs.ReadStock, "Book B", 0, 0)
		resp, err = client.Call(addr, req)
		require.NoError(t, err)
		assert.Equal(t, resp.Success, true)
		assert.Equal(t, resp.Stock, int32(5), addr)
	}

	// the seed row replicates the same way.
	req = stockPack(configs.WriteStock, configs.DefaultStockTitle, 0, configs.DefaultStockAmount)
	resp, err = client.Call(primary, req)
	require.NoError(t, err)
	assert.Equal(t, resp.Success, true)
	req = stockPack(configs.ReadStock, configs.DefaultStockTitle, 0, 0)
	resp, err = client.Call(backups[0], req)
	require.NoError(t, err)
	assert.Equal(t, resp.Stock, configs.DefaultStockAmount)
}
