package suggestions

import (
	"testing"

	"github.com/magiconair/properties/assert"
	"github.com/stretchr/testify/require"

	"github.com/swagata71/ds-practice-2025/configs"
)

func TestSuggestSingleTitle(t *testing.T) {
	assert.Equal(t, Suggest([]string{"Book A"}), []string{"Book C", "Book D"})
}

func TestSuggestUnionDeduplicates(t *testing.T) {
	got := Suggest([]string{"Book A", "Book B", "Book A"})
	assert.Equal(t, got, []string{"Book C", "Book D", "Book E", "Book F"})
}

func TestSuggestUnknownTitle(t *testing.T) {
	require.Empty(t, Suggest([]string{"Book Z"}))
	require.Empty(t, Suggest(nil))
}

func TestSuggestionClockPerOrder(t *testing.T) {
	m := NewManager(&Context{})
	vc := m.tickFor("o1")
	assert.Equal(t, vc[configs.SuggestionsServiceID], uint64(1))
	vc = m.tickFor("o1")
	assert.Equal(t, vc[configs.SuggestionsServiceID], uint64(2))
	// a different order starts its own clock.
	vc = m.tickFor("o2")
	assert.Equal(t, vc[configs.SuggestionsServiceID], uint64(1))
	// callers without an order id share the unknown bucket.
	vc = m.tickFor("")
	assert.Equal(t, vc[configs.SuggestionsServiceID], uint64(1))
	vc = m.tickFor("")
	assert.Equal(t, vc[configs.SuggestionsServiceID], uint64(2))
}
