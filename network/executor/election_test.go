package executor

import (
	"testing"
	"time"

	"github.com/magiconair/properties/assert"
	"github.com/stretchr/testify/require"

	"github.com/swagata71/ds-practice-2025/configs"
	"github.com/swagata71/ds-practice-2025/network"
	"github.com/swagata71/ds-practice-2025/network/queue"
)

func TestStartElectionHandler(t *testing.T) {
	stmt := &Context{replicaID: 2, leaderID: -1}
	stmt.Manager = NewManager(stmt)

	req := network.NewOrderPack(configs.StartElection, 1, "test", "")
	req.Vote = &network.ElectionPayload{SenderID: 1}
	resp := network.NewReply(req)
	stmt.Manager.startElection(req, resp)
	assert.Equal(t, resp.Acknowledged, true)

	req.Vote = &network.ElectionPayload{SenderID: 3}
	resp = network.NewReply(req)
	stmt.Manager.startElection(req, resp)
	assert.Equal(t, resp.Acknowledged, false)
}

func TestAnnounceLeaderHandler(t *testing.T) {
	stmt := &Context{replicaID: 2, leaderID: -1, announceCh: make(chan int, 1)}
	stmt.Manager = NewManager(stmt)

	req := network.NewOrderPack(configs.AnnounceLeader, 1, "test", "")
	req.Vote = &network.ElectionPayload{SenderID: 3, LeaderID: 3}
	resp := network.NewReply(req)
	stmt.Manager.announceLeader(req, resp)
	assert.Equal(t, resp.Acknowledged, true)
	assert.Equal(t, stmt.LeaderID(), 3)
	assert.Equal(t, stmt.IsLeader(), false)
	assert.Equal(t, stmt.State(), StateFollower)

	// an announcement naming this replica flips it to leader.
	req.Vote = &network.ElectionPayload{SenderID: 2, LeaderID: 2}
	resp = network.NewReply(req)
	stmt.Manager.announceLeader(req, resp)
	assert.Equal(t, stmt.IsLeader(), true)
	assert.Equal(t, stmt.State(), StateLeader)
}

// Three replicas on loopback must settle with the highest id leading.
func TestBullyElectionHighestWins(t *testing.T) {
	configs.SetLocal()
	q := queue.Spawn("127.0.0.1:60256")
	defer q.Close()

	addrs := map[int]string{
		1: "127.0.0.1:60251",
		2: "127.0.0.1:60252",
		3: "127.0.0.1:60253",
	}
	peersOf := func(self int) []Peer {
		res := make([]Peer, 0, 2)
		for id, addr := range addrs {
			if id != self {
				res = append(res, Peer{ID: id, Address: addr})
			}
		}
		return res
	}
	replicas := make(map[int]*Context)
	for id, addr := range addrs {
		replicas[id] = Spawn(addr, id, peersOf(id), "127.0.0.1:60256", "")
		defer replicas[id].Close()
	}

	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		if replicas[1].LeaderID() == 3 && replicas[2].LeaderID() == 3 && replicas[3].IsLeader() {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	require.Equal(t, 3, replicas[3].LeaderID())
	assert.Equal(t, replicas[3].IsLeader(), true)
	assert.Equal(t, replicas[3].State(), StateLeader)
	for _, id := range []int{1, 2} {
		assert.Equal(t, replicas[id].LeaderID(), 3)
		assert.Equal(t, replicas[id].IsLeader(), false)
		assert.Equal(t, replicas[id].State(), StateFollower)
	}
}
