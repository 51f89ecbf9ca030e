package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/realtime"
)

func TestInstrumentSinkCountsResults(t *testing.T) {
	metrics := NewMetricsService()
	fail := false
	sink := metrics.InstrumentSink(realtime.SinkFunc(func(context.Context, realtime.Event) error {
		if fail {
			return errors.New("redis down")
		}
		return nil
	}))

	require.NoError(t, sink.Publish(context.Background(), realtime.NewEvent(realtime.EventExamCreated, nil)))
	fail = true
	require.Error(t, sink.Publish(context.Background(), realtime.NewEvent(realtime.EventExamCreated, nil)))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.events.WithLabelValues(realtime.EventExamCreated, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.events.WithLabelValues(realtime.EventExamCreated, "failed")))
}

func TestRecordCacheOperationUpdatesRatio(t *testing.T) {
	metrics := NewMetricsService()
	metrics.RecordCacheOperation(true, 0)
	metrics.RecordCacheOperation(false, 0)
	metrics.RecordCacheOperation(true, 0)

	assert.InDelta(t, 2.0/3.0, testutil.ToFloat64(metrics.cacheHitRatio), 0.0001)
	metrics.RecordLedgerOperation("PAYMENT")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ledgerOps.WithLabelValues("PAYMENT")))
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var metrics *MetricsService
	metrics.RecordLedgerOperation("PAYMENT")
	metrics.RecordBulkItem("attendance", true)
	sink := metrics.InstrumentSink(realtime.NopSink{})
	assert.NoError(t, sink.Publish(context.Background(), realtime.NewEvent("x", nil)))
}
