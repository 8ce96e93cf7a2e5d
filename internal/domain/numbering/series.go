// Package numbering manages document number series. Every warehouse document
// draws its human-facing number from a named series; allocation happens
// inside the transaction that creates the document so numbers stay unique
// under concurrent writers.
package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Series names used by the warehouse documents
const (
	SeriesGoodsReceipt   = "GRPO"
	SeriesSerialTransfer = "SERIAL_ITEM_TRANSFER"
	SeriesPickList       = "PICK_LIST"
	SeriesInvoice        = "SO_INVOICE"
)

// Series is a named, monotonically increasing document number sequence
type Series struct {
	ID        uuid.UUID
	Name      string
	Prefix    string
	PadWidth  int
	NextValue int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSeries creates a series starting at 1
func NewSeries(name, prefix string, padWidth int) *Series {
	now := time.Now()
	if padWidth <= 0 {
		padWidth = 5
	}
	return &Series{
		ID:        uuid.New(),
		Name:      name,
		Prefix:    prefix,
		PadWidth:  padWidth,
		NextValue: 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Allocate formats the next document number and advances the sequence
func (s *Series) Allocate() string {
	number := fmt.Sprintf("%s-%0*d", s.Prefix, s.PadWidth, s.NextValue)
	s.NextValue++
	s.UpdatedAt = time.Now()
	return number
}

// SeriesRepository allocates numbers from persisted series rows. Next must
// lock the series row for the duration of the surrounding transaction.
type SeriesRepository interface {
	// Next allocates the next number in the named series, creating the
	// series with defaults on first use
	Next(ctx context.Context, name string) (string, error)
	// Get returns the current state of a series
	Get(ctx context.Context, name string) (*Series, error)
}

// DefaultPrefixes maps series names to their document number prefixes
var DefaultPrefixes = map[string]string{
	SeriesGoodsReceipt:   "GRPO",
	SeriesSerialTransfer: "SIT",
	SeriesPickList:       "PL",
	SeriesInvoice:        "INV",
}
