package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wms/backend/internal/domain/numbering"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
)

// GormSeriesRepository implements numbering.SeriesRepository using GORM.
// Next locks the series row so concurrent allocations serialize and every
// document number is handed out exactly once.
type GormSeriesRepository struct {
	db *gorm.DB
}

// NewGormSeriesRepository creates a new GormSeriesRepository
func NewGormSeriesRepository(db *gorm.DB) *GormSeriesRepository {
	return &GormSeriesRepository{db: db}
}

// Next allocates the next number in the named series, creating the series
// with defaults on first use. The row lock is held until the surrounding
// transaction commits, so callers must run Next inside a transaction.
func (r *GormSeriesRepository) Next(ctx context.Context, name string) (string, error) {
	var number string

	allocate := func(tx *gorm.DB) error {
		var model models.NumberSeriesModel
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&model, "name = ?", name).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			series := numbering.NewSeries(name, seriesPrefix(name), 0)
			model = *models.NumberSeriesModelFromDomain(series)
			// A concurrent first allocation may have inserted the row
			// between the lookup and this insert. Retry the locked read
			// on conflict.
			if createErr := tx.Create(&model).Error; createErr != nil {
				if lockErr := tx.
					Clauses(clause.Locking{Strength: "UPDATE"}).
					First(&model, "name = ?", name).Error; lockErr != nil {
					return createErr
				}
			}
		} else if err != nil {
			return err
		}

		series := model.ToDomain()
		number = series.Allocate()

		updated := models.NumberSeriesModelFromDomain(series)
		return tx.Save(updated).Error
	}

	// Reuse the caller's transaction when running inside one; Next is
	// normally called from a TransactionScope.
	if err := allocate(r.db.WithContext(ctx)); err != nil {
		return "", err
	}
	return number, nil
}

// Get returns the current state of a series
func (r *GormSeriesRepository) Get(ctx context.Context, name string) (*numbering.Series, error) {
	var model models.NumberSeriesModel
	if err := r.db.WithContext(ctx).First(&model, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func seriesPrefix(name string) string {
	if prefix, ok := numbering.DefaultPrefixes[name]; ok {
		return prefix
	}
	return name
}

// Ensure GormSeriesRepository implements SeriesRepository
var _ numbering.SeriesRepository = (*GormSeriesRepository)(nil)
