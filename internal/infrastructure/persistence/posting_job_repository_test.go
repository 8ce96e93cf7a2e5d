package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/sap"
	"github.com/wms/backend/internal/domain/shared"
)

func newMockPostingJobRepository(t *testing.T) (*GormPostingJobRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormPostingJobRepository(gormDB), mock, mockDB
}

func TestGormPostingJobRepository_FindByID(t *testing.T) {
	t.Run("returns ErrNotFound for unknown job", func(t *testing.T) {
		repo, mock, mockDB := newMockPostingJobRepository(t)
		defer mockDB.Close()

		jobID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "posting_jobs" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(jobID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		job, err := repo.FindByID(context.Background(), jobID)

		assert.Nil(t, job)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps a stored job", func(t *testing.T) {
		repo, mock, mockDB := newMockPostingJobRepository(t)
		defer mockDB.Close()

		jobID := uuid.New()
		docID := uuid.New()
		createdBy := uuid.New()

		rows := sqlmock.NewRows([]string{
			"id", "job_type", "document_type", "document_id", "document_number",
			"payload", "status", "retry_count", "max_retries", "created_by",
		}).AddRow(
			jobID, string(sap.JobTypeGoodsReceipt), sap.DocumentTypeGoodsReceipt, docID, "GRPO-00042",
			[]byte(`{"CardCode":"S001"}`), string(sap.JobStatusPending), 0, 3, createdBy,
		)

		mock.ExpectQuery(`SELECT \* FROM "posting_jobs" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(jobID, 1).
			WillReturnRows(rows)

		job, err := repo.FindByID(context.Background(), jobID)

		assert.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, sap.JobTypeGoodsReceipt, job.JobType)
		assert.Equal(t, "GRPO-00042", job.DocumentNumber)
		assert.Equal(t, sap.JobStatusPending, job.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPostingJobRepository_FindDue(t *testing.T) {
	t.Run("selects pending and due retrying jobs oldest first", func(t *testing.T) {
		repo, mock, mockDB := newMockPostingJobRepository(t)
		defer mockDB.Close()

		now := time.Now()
		rows := sqlmock.NewRows([]string{"id", "job_type", "status"}).
			AddRow(uuid.New(), string(sap.JobTypePickList), string(sap.JobStatusPending)).
			AddRow(uuid.New(), string(sap.JobTypeInvoice), string(sap.JobStatusRetrying))

		mock.ExpectQuery(`SELECT \* FROM "posting_jobs" WHERE status = \$1 OR \(status = \$2 AND next_retry_at <= \$3\) ORDER BY created_at ASC LIMIT .*`).
			WithArgs(string(sap.JobStatusPending), string(sap.JobStatusRetrying), sqlmock.AnyArg()).
			WillReturnRows(rows)

		jobs, err := repo.FindDue(context.Background(), now, 10)

		assert.NoError(t, err)
		assert.Len(t, jobs, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPostingJobRepository_MarkProcessing(t *testing.T) {
	t.Run("empty id list is a no-op", func(t *testing.T) {
		repo, mock, mockDB := newMockPostingJobRepository(t)
		defer mockDB.Close()

		jobs, err := repo.MarkProcessing(context.Background(), nil)

		assert.NoError(t, err)
		assert.Empty(t, jobs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("claims unlocked jobs and marks them processing", func(t *testing.T) {
		repo, mock, mockDB := newMockPostingJobRepository(t)
		defer mockDB.Close()

		jobID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "posting_jobs" WHERE id IN \(\$1\) AND status IN \(\$2,\$3\) FOR UPDATE SKIP LOCKED`).
			WithArgs(jobID, string(sap.JobStatusPending), string(sap.JobStatusRetrying)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).
				AddRow(jobID, string(sap.JobStatusPending)))
		mock.ExpectExec(`UPDATE "posting_jobs" SET .* WHERE id IN \(\$\d+\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		jobs, err := repo.MarkProcessing(context.Background(), []uuid.UUID{jobID})

		assert.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, sap.JobStatusProcessing, jobs[0].Status)
		assert.NotNil(t, jobs[0].StartedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nothing when all jobs are locked elsewhere", func(t *testing.T) {
		repo, mock, mockDB := newMockPostingJobRepository(t)
		defer mockDB.Close()

		jobID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "posting_jobs" WHERE id IN \(\$1\) AND status IN \(\$2,\$3\) FOR UPDATE SKIP LOCKED`).
			WithArgs(jobID, string(sap.JobStatusPending), string(sap.JobStatusRetrying)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "status"}))
		mock.ExpectCommit()

		jobs, err := repo.MarkProcessing(context.Background(), []uuid.UUID{jobID})

		assert.NoError(t, err)
		assert.Empty(t, jobs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPostingJobRepository_CountByStatus(t *testing.T) {
	t.Run("groups counts by status", func(t *testing.T) {
		repo, mock, mockDB := newMockPostingJobRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"status", "count"}).
			AddRow(string(sap.JobStatusPending), 3).
			AddRow(string(sap.JobStatusFailed), 1)

		mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS count FROM "posting_jobs" GROUP BY .*`).
			WillReturnRows(rows)

		counts, err := repo.CountByStatus(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, int64(3), counts[sap.JobStatusPending])
		assert.Equal(t, int64(1), counts[sap.JobStatusFailed])
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPostingJobRepository_DeleteCompletedOlderThan(t *testing.T) {
	t.Run("removes old completed jobs and reports the count", func(t *testing.T) {
		repo, mock, mockDB := newMockPostingJobRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`DELETE FROM "posting_jobs" WHERE status = \$1 AND completed_at < \$2`).
			WithArgs(string(sap.JobStatusCompleted), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 7))

		removed, err := repo.DeleteCompletedOlderThan(context.Background(), time.Now().Add(-30*24*time.Hour))

		assert.NoError(t, err)
		assert.Equal(t, int64(7), removed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPostingJobRepository_RequeueStaleProcessing(t *testing.T) {
	t.Run("moves stuck processing jobs back to retrying", func(t *testing.T) {
		repo, mock, mockDB := newMockPostingJobRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "posting_jobs" SET .* WHERE status = \$\d+ AND started_at < \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 2))

		requeued, err := repo.RequeueStaleProcessing(context.Background(), time.Now().Add(-10*time.Minute))

		assert.NoError(t, err)
		assert.Equal(t, int64(2), requeued)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
