package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LoggingProvider is a decorator that logs every request at debug level and
// every failure at warn level.
type LoggingProvider struct {
	inner Provider
	log   *zap.Logger
}

// WithLogging wraps a Provider with structured request logging.
func WithLogging(p Provider, log *zap.Logger) Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingProvider{inner: p, log: log.Named("llm")}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	fields := []zap.Field{
		zap.String("model", l.inner.ModelID()),
		zap.Duration("latency", time.Since(start)),
		zap.Int("prompt_chars", promptLength(req)),
		zap.Bool("json_mode", req.JSONMode || req.Schema != nil),
	}
	if resp != nil {
		fields = append(fields,
			zap.String("served_by", resp.Model),
			zap.Int("input_tokens", resp.Usage.InputTokens),
			zap.Int("output_tokens", resp.Usage.OutputTokens),
		)
	}
	if err != nil {
		l.log.Warn("llm request failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	l.log.Debug("llm request", fields...)
	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func promptLength(req Request) int {
	n := len(req.System)
	for _, m := range req.Messages {
		n += len(m.Content)
	}
	return n
}
