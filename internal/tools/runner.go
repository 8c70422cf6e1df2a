package tools

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edify-labs/edify/internal/ai"
	"github.com/edify-labs/edify/internal/metrics"
	"github.com/edify-labs/edify/internal/store"
)

// Recorder accepts finished generations for persistence. Implementations
// must not block.
type Recorder interface {
	Record(g *store.Generation)
}

// Run is the outcome of a successful generation.
type Run struct {
	ID     string
	Tool   string
	Input  Input
	Output *Output
}

// Runner executes tools for users and records every attempt that reached
// the model.
type Runner struct {
	client   *ai.Client
	tools    *Registry
	recorder Recorder
	log      *zap.Logger
	now      func() time.Time
}

// NewRunner creates a Runner. recorder may be nil.
func NewRunner(client *ai.Client, tools *Registry, recorder Recorder, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		client:   client,
		tools:    tools,
		recorder: recorder,
		log:      log.Named("tools"),
		now:      time.Now,
	}
}

// Registry returns the registered tools.
func (r *Runner) Registry() *Registry { return r.tools }

// RunJSON decodes an API body and runs the tool.
func (r *Runner) RunJSON(ctx context.Context, user *store.User, slug string, body []byte) (*Run, error) {
	t, ok := r.tools.Get(slug)
	if !ok {
		return nil, ErrUnknownTool
	}
	in, err := t.DecodeJSON(body)
	if err != nil {
		return nil, err
	}
	return r.run(ctx, user, t, in)
}

// RunForm decodes a web form and runs the tool.
func (r *Runner) RunForm(ctx context.Context, user *store.User, slug string, form url.Values) (*Run, error) {
	t, ok := r.tools.Get(slug)
	if !ok {
		return nil, ErrUnknownTool
	}
	in, err := t.DecodeForm(form)
	if err != nil {
		return nil, err
	}
	return r.run(ctx, user, t, in)
}

// Generate runs an already decoded input without recording it.
func (r *Runner) Generate(ctx context.Context, slug string, in Input) (*Output, error) {
	t, ok := r.tools.Get(slug)
	if !ok {
		return nil, ErrUnknownTool
	}
	return t.Generate(ctx, r.client, in)
}

func (r *Runner) run(ctx context.Context, user *store.User, t Tool, in Input) (*Run, error) {
	start := r.now()
	out, err := t.Generate(ctx, r.client, in)
	elapsed := r.now().Sub(start)

	g := &store.Generation{
		ID:         uuid.New().String(),
		ToolSlug:   t.Slug(),
		Status:     store.StatusSucceeded,
		Model:      r.client.ModelID(),
		DurationMs: elapsed.Milliseconds(),
		CreatedAt:  start.UTC(),
	}
	if user != nil {
		g.UserID = user.ID
	}
	if raw, merr := json.Marshal(in); merr == nil {
		g.InputJSON = string(raw)
	}
	if out != nil {
		g.InputTokens = out.Usage.InputTokens
		g.OutputTokens = out.Usage.OutputTokens
		if out.Model != "" {
			g.Model = out.Model
		}
	}

	status := "ok"
	if err != nil {
		aerr := ai.AsError(err)
		g.Status = store.StatusFailed
		g.ErrorCode = aerr.Code
		status = aerr.Code
		if aerr.Code == ai.CodeCanceled {
			g.Status = store.StatusCanceled
			status = store.StatusCanceled
		}
		err = aerr
	} else if raw, merr := json.Marshal(out); merr == nil {
		g.OutputJSON = sql.NullString{String: string(raw), Valid: true}
	}

	metrics.GenerationsTotal.WithLabelValues(t.Slug(), status).Inc()
	metrics.GenerationDuration.WithLabelValues(t.Slug()).Observe(elapsed.Seconds())

	if r.recorder != nil {
		r.recorder.Record(g)
	}

	if err != nil {
		if g.Status == store.StatusCanceled {
			r.log.Info("generation canceled", zap.String("tool", t.Slug()), zap.String("user_id", g.UserID))
		}
		return nil, err
	}
	return &Run{ID: g.ID, Tool: t.Slug(), Input: in, Output: out}, nil
}
