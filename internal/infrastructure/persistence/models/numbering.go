package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/numbering"
)

// NumberSeriesModel is the persistence model for a document number series.
type NumberSeriesModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Name      string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Prefix    string    `gorm:"type:varchar(10);not null"`
	PadWidth  int       `gorm:"not null;default:5"`
	NextValue int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (NumberSeriesModel) TableName() string {
	return "number_series"
}

// ToDomain converts the persistence model to a domain Series entity.
func (m *NumberSeriesModel) ToDomain() *numbering.Series {
	return &numbering.Series{
		ID:        m.ID,
		Name:      m.Name,
		Prefix:    m.Prefix,
		PadWidth:  m.PadWidth,
		NextValue: m.NextValue,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// NumberSeriesModelFromDomain creates a new persistence model from a domain
// Series entity.
func NumberSeriesModelFromDomain(s *numbering.Series) *NumberSeriesModel {
	return &NumberSeriesModel{
		ID:        s.ID,
		Name:      s.Name,
		Prefix:    s.Prefix,
		PadWidth:  s.PadWidth,
		NextValue: s.NextValue,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
