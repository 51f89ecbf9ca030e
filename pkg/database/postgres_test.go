package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/config"
)

func TestDSNEscapesCredentials(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "erp", Password: "p@ss word", Name: "school_erp", SSLMode: "disable"})
	assert.Equal(t, "postgres://erp:p%40ss%20word@db:5432/school_erp?application_name=school-erp&sslmode=disable", dsn)
}

func TestWaitForRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := waitFor(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWaitForStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := waitFor(ctx, func(context.Context) error {
		calls++
		cancel()
		return errors.New("connection refused")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
