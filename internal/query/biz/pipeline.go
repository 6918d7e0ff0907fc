package biz

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kart-io/usrsp-rag/internal/model"
	"github.com/kart-io/usrsp-rag/internal/query/metrics"
	"github.com/kart-io/usrsp-rag/pkg/id"
	logctx "github.com/kart-io/usrsp-rag/pkg/infra/logger"
	"github.com/kart-io/usrsp-rag/pkg/infra/tracing"
)

const tracerName = "github.com/kart-io/usrsp-rag/internal/query/biz"

// Pipeline 串联各阶段，严格按顺序执行，任一阶段失败即中止。
type Pipeline struct {
	fetcher   *Fetcher
	retriever *Retriever
	invoker   *Invoker
	reporter  *Reporter
	metrics   *metrics.Metrics
	ids       id.Generator
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) PipelineOption {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithIDGenerator sets the query id generator.
func WithIDGenerator(g id.Generator) PipelineOption {
	return func(p *Pipeline) {
		p.ids = g
	}
}

// NewPipeline wires the stages.
func NewPipeline(fetcher *Fetcher, retriever *Retriever, invoker *Invoker, reporter *Reporter, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		fetcher:   fetcher,
		retriever: retriever,
		invoker:   invoker,
		reporter:  reporter,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = metrics.New("usrsp_rag")
	}
	if p.ids == nil {
		p.ids = id.NewULIDGenerator()
	}
	return p
}

// Metrics returns the metrics sink.
func (p *Pipeline) Metrics() *metrics.Metrics {
	return p.metrics
}

// Run answers question for customerID and prints the report.
// When neither record set matches it prints the no-data notice and returns
// a result with NoData() true without searching or calling the model.
// The question and the customer id are used verbatim, never validated or
// normalized.
func (p *Pipeline) Run(ctx context.Context, question, customerID string) (result *model.QueryResult, err error) {
	queryID := p.ids.Generate()
	ctx, span := tracing.StartSpan(ctx, tracerName, "query.run",
		attribute.String("query.id", queryID),
		attribute.String("customer.id", customerID),
	)
	ctx = logctx.WithSpanContext(logctx.WithCustomerID(logctx.WithQueryID(ctx, queryID), customerID))
	log := logctx.GetLogger(ctx)
	defer func() {
		if err != nil {
			p.metrics.RecordOutcome(metrics.OutcomeError)
			log.Errorw("query failed", "error", err.Error())
		}
		tracing.EndSpan(span, err)
	}()

	log.Infow("query started")

	result = &model.QueryResult{QueryID: queryID, CustomerID: customerID, Question: question}

	if err = p.stage(ctx, metrics.StageFetchInvitations, func(ctx context.Context) error {
		var ferr error
		result.Invitations, ferr = p.fetcher.FetchInvitations(ctx, customerID)
		return ferr
	}); err != nil {
		return nil, err
	}
	if err = p.stage(ctx, metrics.StageFetchFamilies, func(ctx context.Context) error {
		var ferr error
		result.Families, ferr = p.fetcher.FetchFamilyLinks(ctx, customerID)
		return ferr
	}); err != nil {
		return nil, err
	}
	p.metrics.SetRecords(metrics.KindInvitation, len(result.Invitations))
	p.metrics.SetRecords(metrics.KindFamily, len(result.Families))

	if err = p.reporter.ReportRecords(result.Invitations, result.Families); err != nil {
		return nil, err
	}

	if result.NoData() {
		if err = p.reporter.ReportNoData(customerID); err != nil {
			return nil, err
		}
		p.metrics.RecordOutcome(metrics.OutcomeNoData)
		log.Infow("no records for customer")
		return result, nil
	}

	if err = p.stage(ctx, metrics.StageRetrieve, func(ctx context.Context) error {
		var rerr error
		result.Documents, rerr = p.retriever.Retrieve(ctx, question)
		return rerr
	}); err != nil {
		return nil, err
	}
	p.metrics.SetDocuments(len(result.Documents))

	if err = p.stage(ctx, metrics.StageAssemble, func(context.Context) error {
		var aerr error
		result.Prompt, aerr = AssemblePrompt(PromptInput{
			Documents:   result.Documents,
			Invitations: result.Invitations,
			Families:    result.Families,
			Question:    question,
		})
		return aerr
	}); err != nil {
		return nil, err
	}
	if err = p.reporter.ReportPrompt(result.Prompt); err != nil {
		return nil, err
	}

	if err = p.stage(ctx, metrics.StageInvoke, func(ctx context.Context) error {
		var ierr error
		result.Answer, ierr = p.invoker.Invoke(ctx, result.Prompt)
		return ierr
	}); err != nil {
		return nil, err
	}

	result.Sources = ExtractSources(result.Documents)
	if err = p.reporter.ReportAnswer(result.Answer, result.Sources); err != nil {
		return nil, err
	}

	p.metrics.RecordOutcome(metrics.OutcomeAnswered)
	log.Infow("query answered",
		"invitations", len(result.Invitations), "families", len(result.Families),
		"documents", len(result.Documents))
	return result, nil
}

// stage runs fn inside a child span and records its duration.
func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := tracing.StartSpan(ctx, tracerName, "query."+name)
	start := time.Now()
	err := fn(ctx)
	p.metrics.ObserveStage(name, time.Since(start), err)
	tracing.EndSpan(span, err)
	return err
}
