package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms/backend/internal/domain/sap"
	"github.com/wms/backend/internal/infrastructure/persistence"
)

func newJob(t *testing.T, number string) *sap.PostingJob {
	t.Helper()

	job, err := sap.NewPostingJob(sap.JobTypeGoodsReceipt, "grpo", uuid.New(), number,
		[]byte(`{"CardCode":"V10001"}`), uuid.New())
	require.NoError(t, err)
	return job
}

func TestPostingJobRepository_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormPostingJobRepository(testDB.DB)
	ctx := context.Background()

	t.Run("FindDue returns pending jobs oldest first", func(t *testing.T) {
		first := newJob(t, "GRPO-00001")
		require.NoError(t, repo.Save(ctx, first))
		time.Sleep(10 * time.Millisecond)
		second := newJob(t, "GRPO-00002")
		require.NoError(t, repo.Save(ctx, second))

		due, err := repo.FindDue(ctx, time.Now(), 10)
		require.NoError(t, err)
		require.Len(t, due, 2)
		assert.Equal(t, first.ID, due[0].ID)
		assert.Equal(t, second.ID, due[1].ID)
	})

	t.Run("MarkProcessing claims jobs exactly once", func(t *testing.T) {
		due, err := repo.FindDue(ctx, time.Now(), 10)
		require.NoError(t, err)
		require.NotEmpty(t, due)

		ids := make([]uuid.UUID, len(due))
		for i, j := range due {
			ids[i] = j.ID
		}

		claimed, err := repo.MarkProcessing(ctx, ids)
		require.NoError(t, err)
		assert.Len(t, claimed, len(ids))

		// A second claim on the same ids finds nothing eligible.
		again, err := repo.MarkProcessing(ctx, ids)
		require.NoError(t, err)
		assert.Empty(t, again)

		due, err = repo.FindDue(ctx, time.Now(), 10)
		require.NoError(t, err)
		assert.Empty(t, due)
	})

	t.Run("failed job becomes due again after its retry delay", func(t *testing.T) {
		job := newJob(t, "GRPO-00003")
		require.NoError(t, repo.Save(ctx, job))

		claimed, err := repo.MarkProcessing(ctx, []uuid.UUID{job.ID})
		require.NoError(t, err)
		require.Len(t, claimed, 1)

		claimed[0].Fail("SAP B1 timeout")
		require.NoError(t, repo.Update(ctx, claimed[0]))

		// Not due before the backoff elapses.
		due, err := repo.FindDue(ctx, time.Now(), 10)
		require.NoError(t, err)
		assert.Empty(t, due)

		// Due once the clock passes next_retry_at.
		due, err = repo.FindDue(ctx, time.Now().Add(sap.MaxRetryDelay+time.Second), 10)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, job.ID, due[0].ID)
		assert.Equal(t, sap.JobStatusRetrying, due[0].Status)
		assert.Equal(t, 1, due[0].RetryCount)
	})

	t.Run("Complete finalizes the job", func(t *testing.T) {
		due, err := repo.FindDue(ctx, time.Now().Add(sap.MaxRetryDelay+time.Second), 10)
		require.NoError(t, err)
		require.Len(t, due, 1)

		claimed, err := repo.MarkProcessing(ctx, []uuid.UUID{due[0].ID})
		require.NoError(t, err)
		require.Len(t, claimed, 1)

		claimed[0].Complete("123456", []byte(`{"DocEntry":99}`))
		require.NoError(t, repo.Update(ctx, claimed[0]))

		found, err := repo.FindByID(ctx, claimed[0].ID)
		require.NoError(t, err)
		assert.Equal(t, sap.JobStatusCompleted, found.Status)
		assert.Equal(t, "123456", found.SAPDocNumber)
		assert.NotNil(t, found.CompletedAt)
	})

	t.Run("CountByStatus groups queue totals", func(t *testing.T) {
		counts, err := repo.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[sap.JobStatusCompleted])
		assert.Equal(t, int64(2), counts[sap.JobStatusProcessing])
	})
}
