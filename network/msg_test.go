package network

import (
	"testing"

	"github.com/magiconair/properties/assert"

	"github.com/swagata71/ds-practice-2025/configs"
)

func TestReplyCarriesResponseMark(t *testing.T) {
	req := NewOrderPack(configs.ReadStock, 7, "127.0.0.1:1", "o1")
	resp := NewReply(req)
	// HandleResponse dispatches on this mark; the reply must use the
	// same constant.
	assert.Equal(t, resp.Mark, configs.OpReply)
	assert.Equal(t, resp.Op, configs.ReadStock)
	assert.Equal(t, resp.CallID, uint64(7))
	assert.Equal(t, resp.OrderID, "o1")
}
