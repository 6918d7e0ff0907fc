// Package mongodb wraps the official MongoDB driver behind the storage.Client
// contract.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kart-io/usrsp-rag/pkg/component/storage"
	mongodbopts "github.com/kart-io/usrsp-rag/pkg/options/mongodb"
)

var _ storage.Client = (*Client)(nil)

// Client wraps mongo.Client bound to one default database.
//
// Example usage:
//
//	opts := mongodbopts.NewOptions()
//	client, err := mongodb.New(ctx, opts)
//	if err != nil {
//	    return err
//	}
//	defer client.Close(ctx)
//
//	coll := client.Collection("invitationDetails")
type Client struct {
	client   *mongo.Client
	database *mongo.Database
	opts     *mongodbopts.Options
}

// New connects to MongoDB and verifies the connection with a ping.
//
// The context bounds connection establishment and the initial ping only.
func New(ctx context.Context, opts *mongodbopts.Options) (*Client, error) {
	if opts == nil {
		return nil, fmt.Errorf("mongodb options cannot be nil")
	}
	if errs := opts.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid mongodb options: %w", errs[0])
	}

	client, err := mongo.Connect(ctx, ClientOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Client{
		client:   client,
		database: client.Database(opts.Database),
		opts:     opts,
	}, nil
}

// ClientOptions translates Options into driver client options.
func ClientOptions(opts *mongodbopts.Options) *mongoopts.ClientOptions {
	clientOpts := mongoopts.Client().ApplyURI(mongodbopts.BuildURI(opts))
	// Embedded documents decode as maps so records dump as plain JSON objects.
	clientOpts.SetBSONOptions(&mongoopts.BSONOptions{DefaultDocumentM: true})

	if opts.URI != "" && opts.Username != "" {
		clientOpts.SetAuth(mongoopts.Credential{
			Username:   opts.Username,
			Password:   opts.Password,
			AuthSource: opts.AuthSource,
		})
	}
	if opts.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(opts.MaxPoolSize)
	}
	if opts.MaxConnIdleTime > 0 {
		clientOpts.SetMaxConnIdleTime(opts.MaxConnIdleTime)
	}
	if opts.ConnectTimeout > 0 {
		clientOpts.SetConnectTimeout(opts.ConnectTimeout)
	}
	if opts.ServerSelectionTimeout > 0 {
		clientOpts.SetServerSelectionTimeout(opts.ServerSelectionTimeout)
	}
	if opts.Direct {
		clientOpts.SetDirect(true)
	}
	return clientOpts
}

// Name returns the storage type identifier.
func (c *Client) Name() string {
	return "mongodb"
}

// Ping checks if the connection to MongoDB is alive.
func (c *Client) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("client is nil")
	}
	return c.client.Ping(ctx, nil)
}

// Close disconnects from MongoDB. Safe to call more than once.
func (c *Client) Close(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	err := c.client.Disconnect(ctx)
	if err == mongo.ErrClientDisconnected {
		return nil
	}
	return err
}

// Database returns the default database.
func (c *Client) Database() *mongo.Database {
	return c.database
}

// Collection returns a collection from the default database.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

// Raw returns the underlying mongo.Client.
func (c *Client) Raw() *mongo.Client {
	return c.client
}
