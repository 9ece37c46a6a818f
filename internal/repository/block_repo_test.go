package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	appdb "github.com/realtruedate/backend/internal/db"
	"github.com/realtruedate/backend/internal/repository"
)

func TestBlockUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	repo := repository.NewBlockRepository(database)

	_, err := repo.Upsert(ctx, 1, 2, "spam")
	assert.NoError(t, err)

	// blocking again updates the reason instead of erroring
	_, err = repo.Upsert(ctx, 1, 2, "harassment")
	assert.NoError(t, err)

	var count int64
	database.Model(&appdb.Block{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var block appdb.Block
	assert.NoError(t, database.First(&block).Error)
	assert.Equal(t, "harassment", block.Reason)
}

func TestBlockDelete(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	repo := repository.NewBlockRepository(database)

	_, _ = repo.Upsert(ctx, 1, 2, "")
	assert.NoError(t, repo.Delete(ctx, 1, 2))

	// unblocking an unblocked pair surfaces not-found
	err := repo.Delete(ctx, 1, 2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBlockInvolvedIDs(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	repo := repository.NewBlockRepository(database)

	_, _ = repo.Upsert(ctx, 1, 2, "") // 1 blocked 2
	_, _ = repo.Upsert(ctx, 3, 1, "") // 3 blocked 1
	_, _ = repo.Upsert(ctx, 4, 5, "") // unrelated

	ids, err := repo.InvolvedIDs(ctx, 1)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []uint64{2, 3}, ids)

	exists, err := repo.Exists(ctx, 1, 2)
	assert.NoError(t, err)
	assert.True(t, exists)

	// direction matters for Exists
	exists, err = repo.Exists(ctx, 2, 1)
	assert.NoError(t, err)
	assert.False(t, exists)
}
