package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "erp")

	var dest map[string]string
	assert.ErrorIs(t, repo.Get(context.Background(), "timetable:grid:10:A", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "timetable:*"))
	assert.NoError(t, repo.Delete(context.Background(), "timetable:grid:10*:A"))
	assert.Equal(t, "erp:k", repo.key("k"))
}
