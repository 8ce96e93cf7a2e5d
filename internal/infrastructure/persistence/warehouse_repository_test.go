package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/shared"
)

// newMockDB creates a GORM connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func newMockWarehouseRepository(t *testing.T) (*GormWarehouseRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormWarehouseRepository(gormDB), mock, mockDB
}

func TestNewGormWarehouseRepository(t *testing.T) {
	t.Run("creates repository with valid DB", func(t *testing.T) {
		repo, _, mockDB := newMockWarehouseRepository(t)
		defer mockDB.Close()

		assert.NotNil(t, repo)
		assert.NotNil(t, repo.db)
	})
}

func TestGormWarehouseRepository_FindByID(t *testing.T) {
	t.Run("finds existing warehouse", func(t *testing.T) {
		repo, mock, mockDB := newMockWarehouseRepository(t)
		defer mockDB.Close()

		warehouseID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "version", "code", "name", "business_place_id", "active"}).
			AddRow(warehouseID, 1, "WH01", "Main Warehouse", 2, true)

		mock.ExpectQuery(`SELECT \* FROM "warehouses" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(warehouseID, 1).
			WillReturnRows(rows)

		wh, err := repo.FindByID(context.Background(), warehouseID)

		assert.NoError(t, err)
		require.NotNil(t, wh)
		assert.Equal(t, warehouseID, wh.ID)
		assert.Equal(t, "WH01", wh.Code)
		assert.Equal(t, 2, wh.BusinessPlaceID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for non-existent warehouse", func(t *testing.T) {
		repo, mock, mockDB := newMockWarehouseRepository(t)
		defer mockDB.Close()

		warehouseID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "warehouses" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(warehouseID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		wh, err := repo.FindByID(context.Background(), warehouseID)

		assert.Nil(t, wh)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormWarehouseRepository_FindByCode(t *testing.T) {
	t.Run("finds warehouse by code", func(t *testing.T) {
		repo, mock, mockDB := newMockWarehouseRepository(t)
		defer mockDB.Close()

		warehouseID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "version", "code", "name", "business_place_id", "active"}).
			AddRow(warehouseID, 1, "WH02", "Returns", 0, true)

		mock.ExpectQuery(`SELECT \* FROM "warehouses" WHERE code = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("WH02", 1).
			WillReturnRows(rows)

		wh, err := repo.FindByCode(context.Background(), "WH02")

		assert.NoError(t, err)
		require.NotNil(t, wh)
		assert.Equal(t, "WH02", wh.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		repo, mock, mockDB := newMockWarehouseRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "warehouses" WHERE code = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("WH02", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByCode(context.Background(), "  WH02  ")

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormWarehouseRepository_ExistsByCode(t *testing.T) {
	t.Run("returns true when code is taken", func(t *testing.T) {
		repo, mock, mockDB := newMockWarehouseRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"count"}).AddRow(1)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "warehouses" WHERE code = \$1`).
			WithArgs("WH01").
			WillReturnRows(rows)

		exists, err := repo.ExistsByCode(context.Background(), "WH01")

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns false when code is free", func(t *testing.T) {
		repo, mock, mockDB := newMockWarehouseRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"count"}).AddRow(0)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "warehouses" WHERE code = \$1`).
			WithArgs("WH09").
			WillReturnRows(rows)

		exists, err := repo.ExistsByCode(context.Background(), "WH09")

		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormWarehouseRepository_Delete(t *testing.T) {
	t.Run("deletes existing warehouse", func(t *testing.T) {
		repo, mock, mockDB := newMockWarehouseRepository(t)
		defer mockDB.Close()

		warehouseID := uuid.New()

		mock.ExpectExec(`DELETE FROM "warehouses" WHERE id = \$1`).
			WithArgs(warehouseID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), warehouseID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when nothing was deleted", func(t *testing.T) {
		repo, mock, mockDB := newMockWarehouseRepository(t)
		defer mockDB.Close()

		warehouseID := uuid.New()

		mock.ExpectExec(`DELETE FROM "warehouses" WHERE id = \$1`).
			WithArgs(warehouseID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), warehouseID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
