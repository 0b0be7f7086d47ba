package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/alexanderramin/hrdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVRepo_SetGetOverwrite(t *testing.T) {
	repo := NewSQLiteKVRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	_, err := repo.Get(ctx, KeyAccessToken)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Set(ctx, KeyAccessToken, "t1"))
	require.NoError(t, repo.Set(ctx, KeyAccessToken, "t2"))

	got, err := repo.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "t2", got)
}

func TestKVRepo_DeleteAndKeys(t *testing.T) {
	repo := NewSQLiteKVRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	for _, k := range []string{KeyUserID, KeyRefreshToken, KeyAccessToken} {
		require.NoError(t, repo.Set(ctx, k, "x"))
	}
	keys, err := repo.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyAccessToken, KeyRefreshToken, KeyUserID}, keys)

	require.NoError(t, repo.Delete(ctx, KeyAccessToken, KeyRefreshToken, "never-set"))
	keys, err = repo.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyUserID}, keys)
}

func TestKVRepo_JSONValues(t *testing.T) {
	repo := NewSQLiteKVRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	in := map[string][]string{"department": {"IT"}, "status": {"open", "draft"}}
	require.NoError(t, SetJSON(ctx, repo, "VacancyFilters", in))

	var out map[string][]string
	require.NoError(t, GetJSON(ctx, repo, "VacancyFilters", &out))
	assert.Equal(t, in, out)

	require.NoError(t, repo.Set(ctx, "broken", "{"))
	assert.Error(t, GetJSON(ctx, repo, "broken", &out))
}

func TestKVRepo_ConcurrentWrites(t *testing.T) {
	repo := NewSQLiteKVRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Set(ctx, "JDManagementFilters", `{"q":["a"]}`))
		}()
	}
	wg.Wait()

	got, err := repo.Get(ctx, "JDManagementFilters")
	require.NoError(t, err)
	assert.Equal(t, `{"q":["a"]}`, got)
}
