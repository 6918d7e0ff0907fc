// Package query provides the usrsp-rag application: it answers a question
// about one customer from their MongoDB records and a vector index.
package query

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/kart-io/logger"
	"github.com/spf13/cobra"

	"github.com/kart-io/usrsp-rag/internal/model"
	"github.com/kart-io/usrsp-rag/internal/query/biz"
	"github.com/kart-io/usrsp-rag/internal/query/metrics"
	"github.com/kart-io/usrsp-rag/internal/query/store"
	"github.com/kart-io/usrsp-rag/pkg/component/milvus"
	"github.com/kart-io/usrsp-rag/pkg/component/mongodb"
	"github.com/kart-io/usrsp-rag/pkg/component/qdrant"
	"github.com/kart-io/usrsp-rag/pkg/component/storage"
	"github.com/kart-io/usrsp-rag/pkg/infra/app"
	"github.com/kart-io/usrsp-rag/pkg/infra/tracing"
	"github.com/kart-io/usrsp-rag/pkg/llm"
	// 导入 LLM 供应商以自动注册
	_ "github.com/kart-io/usrsp-rag/pkg/llm/ollama"
	_ "github.com/kart-io/usrsp-rag/pkg/llm/openai"
	queryopts "github.com/kart-io/usrsp-rag/pkg/options/query"
)

const (
	appName        = "usrsp-rag"
	appUse         = "usrsp-rag [flags] <query_text> <customer_id>"
	appDescription = `usrsp-rag answers a question about one customer.

It loads the customer's invitation and family-linking records from the usrsp
database, retrieves the 5 most similar document chunks from the vector index,
and asks a local language model to answer from both. The answer is printed
with the ids of the chunks it was based on.

If the customer has no records at all, it prints a notice and stops.`

	closeTimeout = 10 * time.Second
)

// NewApp creates a new application instance.
func NewApp() *app.App {
	opts := NewOptions()

	return app.NewApp(
		app.WithName(appName),
		app.WithUse(appUse),
		app.WithShortDescription("Answer a question about a customer with RAG"),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithArgs(cobra.ExactArgs(2)),
		app.WithRunFunc(func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			_, err := Run(ctx, opts, args[0], args[1], cmd.OutOrStdout())
			return err
		}),
	)
}

// Run answers question for customerID, writes the report to out and returns
// the result for programmatic callers.
func Run(ctx context.Context, opts *Options, question, customerID string, out io.Writer) (*model.QueryResult, error) {
	// 1. 初始化日志
	opts.Log.AddInitialField("service", appName)
	opts.Log.AddInitialField("version", app.GetVersion())
	if err := opts.Log.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Flush() }()

	runner, err := NewRunner(ctx, opts, out)
	if err != nil {
		return nil, err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if cerr := runner.Close(closeCtx); cerr != nil {
			logger.Warnw("failed to release resources", "error", cerr.Error())
		}
	}()

	return runner.Run(ctx, question, customerID)
}

// Runner owns the pipeline and the connections it uses.
type Runner struct {
	pipeline    *biz.Pipeline
	storages    *storage.Manager
	tracer      *tracing.Provider
	metricsFile string
}

// NewRunner wires stores, providers and the pipeline. The report is
// written to out. Vector backends connect on first search.
func NewRunner(ctx context.Context, opts *Options, out io.Writer) (*Runner, error) {
	r := &Runner{
		storages:    storage.NewManager(),
		metricsFile: opts.Metrics.Textfile,
	}

	// 2. 初始化链路追踪
	tp, err := tracing.NewProvider(ctx, opts.Tracing, app.GetVersion())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	r.tracer = tp

	// 3. 初始化记录存储
	records, err := r.openRecordStore(ctx, opts)
	if err != nil {
		_ = r.Close(ctx)
		return nil, err
	}

	// 4. 初始化 LLM 供应商
	embedder, err := llm.NewEmbeddingProvider(opts.Embedding.Provider, opts.Embedding.ToConfigMap())
	if err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	chat, err := llm.NewChatProvider(opts.Chat.Provider, opts.Chat.ToConfigMap())
	if err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("failed to initialize chat provider: %w", err)
	}
	logger.Infow("LLM providers initialized",
		"embedding_provider", opts.Embedding.Provider,
		"embedding_model", opts.Embedding.Model,
		"chat_provider", opts.Chat.Provider,
		"chat_model", opts.Chat.Model,
	)

	// 5. 初始化流水线
	vectors := store.NewLazyVectorStore(r.vectorOpener(opts))
	reporter := biz.NewReporter(out, opts.Report.Color && !color.NoColor)
	r.pipeline = biz.NewPipeline(
		biz.NewFetcher(records),
		biz.NewRetriever(vectors, embedder),
		biz.NewInvoker(chat),
		reporter,
		biz.WithMetrics(metrics.New(opts.Metrics.Namespace)),
	)
	return r, nil
}

func (r *Runner) openRecordStore(ctx context.Context, opts *Options) (store.RecordStore, error) {
	switch opts.Records.Backend {
	case queryopts.RecordBackendFixture:
		s, err := store.LoadFixtureRecordStore(opts.Records.FixturePath)
		if err != nil {
			return nil, err
		}
		logger.Infow("fixture record store loaded", "path", opts.Records.FixturePath)
		return s, nil
	default:
		client, err := mongodb.New(ctx, opts.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		if err := r.storages.Register(client.Name(), client); err != nil {
			_ = client.Close(ctx)
			return nil, err
		}
		logger.Infow("MongoDB client initialized", "database", opts.MongoDB.Database)
		return store.NewMongoRecordStore(client.Database(),
			opts.Records.InvitationCollection, opts.Records.FamilyLinkingCollection), nil
	}
}

func (r *Runner) vectorOpener(opts *Options) store.OpenFunc {
	return func(ctx context.Context) (store.VectorStore, error) {
		switch opts.Vector.Backend {
		case queryopts.VectorBackendMilvus:
			client, err := milvus.New(ctx, opts.Milvus)
			if err != nil {
				return nil, fmt.Errorf("failed to connect to milvus: %w", err)
			}
			if err := r.storages.Register(client.Name(), client); err != nil {
				_ = client.Close(ctx)
				return nil, err
			}
			if err := requireCollection(ctx, client.HasCollection, opts.Vector.Collection); err != nil {
				return nil, err
			}
			return store.NewMilvusVectorStore(client, opts.Vector.Collection,
				opts.Milvus.ContentField, opts.Milvus.MetadataFields), nil
		case queryopts.VectorBackendQdrant:
			client, err := qdrant.New(opts.Qdrant)
			if err != nil {
				return nil, fmt.Errorf("failed to create qdrant client: %w", err)
			}
			if err := r.storages.Register(client.Name(), client); err != nil {
				_ = client.Close(ctx)
				return nil, err
			}
			if err := requireCollection(ctx, client.CollectionExists, opts.Vector.Collection); err != nil {
				return nil, err
			}
			return store.NewQdrantVectorStore(client, opts.Vector.Collection, opts.Qdrant.ContentField), nil
		default:
			logger.Debugw("using local vector index", "path", opts.Vector.IndexPath)
			return store.NewLocalIndex(opts.Vector.IndexPath), nil
		}
	}
}

func requireCollection(ctx context.Context, exists func(context.Context, string) (bool, error), name string) error {
	ok, err := exists(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: collection %q", store.ErrIndexNotFound, name)
	}
	return nil
}

// Run executes one query and exports metrics when configured.
func (r *Runner) Run(ctx context.Context, question, customerID string) (*model.QueryResult, error) {
	result, err := r.pipeline.Run(ctx, question, customerID)
	if r.metricsFile != "" {
		if werr := r.pipeline.Metrics().WriteTextfile(r.metricsFile); werr != nil {
			logger.Warnw("failed to export metrics", "path", r.metricsFile, "error", werr.Error())
		}
	}
	return result, err
}

// Close releases connections and flushes spans.
func (r *Runner) Close(ctx context.Context) error {
	var errs []error
	if err := r.storages.CloseAll(ctx); err != nil {
		errs = append(errs, err)
	}
	if r.tracer != nil {
		if err := r.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
