package qdrant_test

import (
	"context"
	"os"
	"testing"

	qdrantclient "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/usrsp-rag/pkg/component/qdrant"
	qdrantopts "github.com/kart-io/usrsp-rag/pkg/options/qdrant"
)

func str(s string) *qdrantclient.Value {
	return &qdrantclient.Value{Kind: &qdrantclient.Value_StringValue{StringValue: s}}
}

func TestValueToAny(t *testing.T) {
	v := &qdrantclient.Value{Kind: &qdrantclient.Value_StructValue{StructValue: &qdrantclient.Struct{
		Fields: map[string]*qdrantclient.Value{
			"id":   str("data/guide.pdf:0:1"),
			"page": {Kind: &qdrantclient.Value_IntegerValue{IntegerValue: 3}},
			"tags": {Kind: &qdrantclient.Value_ListValue{ListValue: &qdrantclient.ListValue{
				Values: []*qdrantclient.Value{str("a"), {Kind: &qdrantclient.Value_BoolValue{BoolValue: true}}},
			}}},
			"none": {Kind: &qdrantclient.Value_NullValue{NullValue: qdrantclient.NullValue_NULL_VALUE}},
		},
	}}}

	got := qdrant.ValueToAny(v)
	assert.Equal(t, map[string]any{
		"id":   "data/guide.pdf:0:1",
		"page": int64(3),
		"tags": []any{"a", true},
		"none": nil,
	}, got)
	assert.Nil(t, qdrant.ValueToAny(nil))
}

func TestNewDoesNotDial(t *testing.T) {
	opts := qdrantopts.NewOptions()
	c, err := qdrant.New(opts)
	require.NoError(t, err)
	assert.Equal(t, "qdrant", c.Name())
	assert.NoError(t, c.Close(context.Background()))
}

// TestSearchIntegration 需要运行中的 Qdrant，通过 QDRANT_TEST_COLLECTION 开启。
func TestSearchIntegration(t *testing.T) {
	collection := os.Getenv("QDRANT_TEST_COLLECTION")
	if collection == "" {
		t.Skip("QDRANT_TEST_COLLECTION not set, skipping integration test")
	}

	c, err := qdrant.New(qdrantopts.NewOptions())
	require.NoError(t, err)
	defer func() { _ = c.Close(context.Background()) }()

	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))
	ok, err := c.CollectionExists(ctx, collection)
	require.NoError(t, err)
	require.True(t, ok)
}
