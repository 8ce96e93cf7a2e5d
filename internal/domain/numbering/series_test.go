package numbering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeries_Allocate(t *testing.T) {
	t.Run("formats prefix and padded counter", func(t *testing.T) {
		s := NewSeries(SeriesGoodsReceipt, "GRPO", 5)
		assert.Equal(t, "GRPO-00001", s.Allocate())
		assert.Equal(t, "GRPO-00002", s.Allocate())
		assert.Equal(t, int64(3), s.NextValue)
	})

	t.Run("defaults pad width", func(t *testing.T) {
		s := NewSeries(SeriesPickList, "PL", 0)
		assert.Equal(t, "PL-00001", s.Allocate())
	})

	t.Run("grows past pad width", func(t *testing.T) {
		s := NewSeries(SeriesInvoice, "INV", 3)
		s.NextValue = 1000
		assert.Equal(t, "INV-1000", s.Allocate())
	})
}
