package suggestions

import (
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set"
	"github.com/goccy/go-json"

	"github.com/swagata71/ds-practice-2025/configs"
	"github.com/swagata71/ds-practice-2025/network"
)

// catalogue the static per-title suggestion lists.
var catalogue = map[string][]string{
	"Book A": {"Book C", "Book D"},
	"Book B": {"Book E", "Book F"},
	"Book K": {"Book G", "Book H"},
	"Book L": {"Book I", "Book J"},
}

// Manager answers catalogue lookups. The lookup itself is stateless; the
// per-caller clocks only log how often each order asked.
type Manager struct {
	stmt   *Context
	latch  sync.Mutex
	clocks map[string]network.VectorClock
}

func NewManager(stmt *Context) *Manager {
	return &Manager{
		stmt:   stmt,
		clocks: make(map[string]network.VectorClock),
	}
}

func (m *Manager) handleRequest(requestBytes []byte) {
	var req network.ServiceGossip
	if err := json.Unmarshal(requestBytes, &req); err != nil {
		configs.Warn(false, "suggestions dropped an unreadable message: "+err.Error())
		return
	}
	if req.Mark != configs.GetSuggestions {
		configs.Warn(false, "suggestions received unknown op "+req.Mark)
		return
	}
	resp := network.NewReply(&req)
	m.getSuggestions(&req, resp)
	respBytes, err := json.Marshal(resp)
	configs.CheckError(err)
	m.stmt.conn.SendMsg(req.From, respBytes)
}

func (m *Manager) getSuggestions(req *network.ServiceGossip, resp *network.ServiceResponse) {
	resp.Suggested = Suggest(req.PurchasedBooks)
	resp.Success = true
	resp.VC = m.tickFor(req.OrderID)
	configs.OrderPrint(req.OrderID, "suggested %v titles for %v purchased", len(resp.Suggested), len(req.PurchasedBooks))
}

// Suggest returns the deduplicated union of the catalogue entries for the
// purchased titles, in sorted order. Titles off the catalogue contribute
// nothing.
func Suggest(purchased []string) []string {
	set := mapset.NewSet()
	for _, title := range purchased {
		for _, s := range catalogue[title] {
			set.Add(s)
		}
	}
	res := make([]string, 0, set.Cardinality())
	for _, v := range set.ToSlice() {
		res = append(res, v.(string))
	}
	sort.Strings(res)
	return res
}

func (m *Manager) tickFor(orderID string) network.VectorClock {
	m.latch.Lock()
	defer m.latch.Unlock()
	if orderID == "" {
		orderID = configs.UnknownOrderID
	}
	vc, ok := m.clocks[orderID]
	if !ok {
		vc = network.NewVectorClock(configs.SuggestionsServiceID)
		m.clocks[orderID] = vc
		return vc.Clone()
	}
	return vc.Tick(configs.SuggestionsServiceID).Clone()
}
