package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamBool(t *testing.T) {
	for _, v := range []string{"true", "1", "yes", "on", "TRUE", " Yes "} {
		assert.True(t, Param(v).Bool(false), v)
	}
	for _, v := range []string{"false", "0", "no", "off", "Off"} {
		assert.False(t, Param(v).Bool(true), v)
	}
	for _, v := range []string{"", "maybe", "2"} {
		assert.True(t, Param(v).Bool(true), v)
		assert.False(t, Param(v).Bool(false), v)
	}
}

func TestParamInt(t *testing.T) {
	assert.Equal(t, 12, Param("12").Int(30))
	assert.Equal(t, 7, Param(" 7.9 ").Int(30))
	assert.Equal(t, 30, Param("").Int(30))
	assert.Equal(t, 30, Param("abc").Int(30))
	assert.Equal(t, -4, Param("-4").Int(30))
}

func TestParamUnmarshalJSON(t *testing.T) {
	var req EvaluateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"symbol":"BTCUSD","limit":12,"batch_size":"4","include_batches":true,"async":"yes"}`), &req))

	assert.Equal(t, "BTCUSD", req.Symbol)
	assert.Equal(t, 12, req.Limit.Int(0))
	assert.Equal(t, 4, req.BatchSize.Int(0))
	assert.True(t, req.IncludeBatches.Bool(false))
	assert.True(t, req.Async.Bool(false))

	req = EvaluateRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"symbol":"BTCUSD","async":null}`), &req))
	assert.Equal(t, Param(""), req.Async)

	assert.Error(t, json.Unmarshal([]byte(`{"async":[1]}`), &req))
}
