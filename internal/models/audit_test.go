package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogRendersValuesAsJSON(t *testing.T) {
	raw, err := json.Marshal(AuditLog{Action: AuditActionUpdate, NewValues: JSONBytes(`{"paidAmount":1000}`)})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"newValues":{"paidAmount":1000}`)
	assert.NotContains(t, string(raw), "oldValues")
}

func TestJSONBytesScanAndValue(t *testing.T) {
	var b JSONBytes
	require.NoError(t, b.Scan([]byte(`{"a":1}`)))
	assert.Equal(t, `{"a":1}`, string(b))

	v, err := b.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, v)

	require.NoError(t, b.Scan(nil))
	assert.Empty(t, b)
	v, err = b.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	assert.Error(t, b.Scan(42))
}
