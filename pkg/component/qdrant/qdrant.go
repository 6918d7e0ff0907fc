// Package qdrant wraps the Qdrant gRPC API for read-only similarity search.
package qdrant

import (
	"context"
	"fmt"

	qdrantclient "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/kart-io/usrsp-rag/pkg/component/storage"
	qdrantopts "github.com/kart-io/usrsp-rag/pkg/options/qdrant"
)

var _ storage.Client = (*Client)(nil)

// Client holds one gRPC connection and the Qdrant service stubs on it.
type Client struct {
	conn        *grpc.ClientConn
	points      qdrantclient.PointsClient
	collections qdrantclient.CollectionsClient
	service     qdrantclient.QdrantClient
	opts        *qdrantopts.Options
}

// New dials Qdrant. The connection is established lazily by gRPC; call Ping
// to verify the server is reachable.
func New(opts *qdrantopts.Options) (*Client, error) {
	if opts == nil {
		return nil, fmt.Errorf("qdrant options is nil")
	}

	conn, err := grpc.NewClient(opts.Address(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant at %s: %w", opts.Address(), err)
	}

	return &Client{
		conn:        conn,
		points:      qdrantclient.NewPointsClient(conn),
		collections: qdrantclient.NewCollectionsClient(conn),
		service:     qdrantclient.NewQdrantClient(conn),
		opts:        opts,
	}, nil
}

// Name returns the storage type identifier.
func (c *Client) Name() string {
	return "qdrant"
}

// Ping calls the Qdrant health check RPC.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(c.withAuth(ctx), c.opts.Timeout)
	defer cancel()
	if _, err := c.service.HealthCheck(ctx, &qdrantclient.HealthCheckRequest{}); err != nil {
		return fmt.Errorf("qdrant health check failed: %w", err)
	}
	return nil
}

// Close closes the gRPC connection.
func (c *Client) Close(_ context.Context) error {
	return c.conn.Close()
}

// CollectionExists reports whether the collection exists.
func (c *Client) CollectionExists(ctx context.Context, collection string) (bool, error) {
	resp, err := c.collections.CollectionExists(c.withAuth(ctx), &qdrantclient.CollectionExistsRequest{
		CollectionName: collection,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check qdrant collection: %w", err)
	}
	return resp.GetResult().GetExists(), nil
}

// SearchResult represents a single search hit.
type SearchResult struct {
	ID      string
	Score   float32
	Payload map[string]any
}

// Search returns the limit nearest points with their full payload, in Qdrant
// ranking order.
func (c *Client) Search(ctx context.Context, collection string, vector []float32, limit uint64) ([]SearchResult, error) {
	req := &qdrantclient.SearchPoints{
		CollectionName: collection,
		Vector:         vector,
		Limit:          limit,
		WithPayload: &qdrantclient.WithPayloadSelector{
			SelectorOptions: &qdrantclient.WithPayloadSelector_Enable{Enable: true},
		},
	}
	if c.opts.VectorName != "" {
		name := c.opts.VectorName
		req.VectorName = &name
	}

	resp, err := c.points.Search(c.withAuth(ctx), req)
	if err != nil {
		return nil, fmt.Errorf("failed to search qdrant: %w", err)
	}

	hits := make([]SearchResult, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		payload := make(map[string]any, len(point.GetPayload()))
		for k, v := range point.GetPayload() {
			payload[k] = ValueToAny(v)
		}
		hits = append(hits, SearchResult{
			ID:      pointID(point.GetId()),
			Score:   point.GetScore(),
			Payload: payload,
		})
	}
	return hits, nil
}

func (c *Client) withAuth(ctx context.Context) context.Context {
	if c.opts.APIKey == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "api-key", c.opts.APIKey)
}

func pointID(id *qdrantclient.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	return fmt.Sprint(id.GetNum())
}

// ValueToAny converts a Qdrant payload value into plain Go values.
func ValueToAny(v *qdrantclient.Value) any {
	if v == nil {
		return nil
	}
	switch kind := v.GetKind().(type) {
	case *qdrantclient.Value_StringValue:
		return kind.StringValue
	case *qdrantclient.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrantclient.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrantclient.Value_BoolValue:
		return kind.BoolValue
	case *qdrantclient.Value_StructValue:
		out := make(map[string]any, len(kind.StructValue.GetFields()))
		for k, fv := range kind.StructValue.GetFields() {
			out[k] = ValueToAny(fv)
		}
		return out
	case *qdrantclient.Value_ListValue:
		values := kind.ListValue.GetValues()
		out := make([]any, len(values))
		for i, lv := range values {
			out[i] = ValueToAny(lv)
		}
		return out
	default:
		return nil
	}
}
