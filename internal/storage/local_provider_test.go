package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProvider(t *testing.T) {
	dir := t.TempDir()
	provider := NewLocalProvider(dir)
	ctx := context.Background()

	require.NoError(t, provider.CreateBucket(ctx, "archive"))
	require.NoError(t, provider.PutObject(ctx, "archive", "evaluations/BTCUSD/1.json", bytes.NewReader([]byte(`{"a":1}`))))
	require.NoError(t, provider.PutObject(ctx, "archive", "evaluations/BTCUSD/2.json", bytes.NewReader([]byte(`{"a":2}`))))
	require.NoError(t, provider.PutObject(ctx, "archive", "evaluations/ETHUSD/1.json", bytes.NewReader([]byte(`{"b":1}`))))

	data, err := os.ReadFile(filepath.Join(dir, "archive", "evaluations", "BTCUSD", "2.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(data))

	data, err = provider.GetObject(ctx, "archive", "evaluations/ETHUSD/1.json")
	require.NoError(t, err)
	assert.Equal(t, `{"b":1}`, string(data))

	objects, err := provider.ListObjects(ctx, "archive", "evaluations/BTCUSD/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []Object{
		{Name: "evaluations/BTCUSD/1.json", Size: 7},
		{Name: "evaluations/BTCUSD/2.json", Size: 7},
	}, objects)

	_, err = provider.GetObject(ctx, "archive", "missing.json")
	assert.Error(t, err)
}
