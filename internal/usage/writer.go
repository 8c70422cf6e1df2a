// Package usage persists generation history off the request path.
package usage

import (
	"context"

	"go.uber.org/zap"

	"github.com/edify-labs/edify/internal/metrics"
	"github.com/edify-labs/edify/internal/store"
)

// DefaultBuffer is the channel capacity used by serve.
const DefaultBuffer = 256

// GenerationSink is the persistence side of the writer.
type GenerationSink interface {
	Record(ctx context.Context, g *store.Generation) error
}

// Writer queues generations on a buffered channel and writes them from a
// single goroutine started with Run.
type Writer struct {
	ch   chan *store.Generation
	sink GenerationSink
	log  *zap.Logger
}

// NewWriter creates a Writer with the given buffer size.
func NewWriter(sink GenerationSink, buffer int, log *zap.Logger) *Writer {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{
		ch:   make(chan *store.Generation, buffer),
		sink: sink,
		log:  log.Named("usage"),
	}
}

// Record enqueues g. When the buffer is full the record is dropped and
// counted as an error.
func (w *Writer) Record(g *store.Generation) {
	select {
	case w.ch <- g:
	default:
		metrics.GenerationRecordErrorsTotal.Inc()
		w.log.Warn("generation dropped, buffer full", zap.String("id", g.ID), zap.String("tool", g.ToolSlug))
	}
}

// Run writes queued generations until ctx is cancelled, then drains what is
// left in the buffer and returns.
func (w *Writer) Run(ctx context.Context) error {
	for {
		select {
		case g := <-w.ch:
			w.write(ctx, g)
		case <-ctx.Done():
			for {
				select {
				case g := <-w.ch:
					w.write(context.Background(), g)
				default:
					return nil
				}
			}
		}
	}
}

func (w *Writer) write(ctx context.Context, g *store.Generation) {
	if err := w.sink.Record(ctx, g); err != nil {
		metrics.GenerationRecordErrorsTotal.Inc()
		w.log.Error("generation write failed", zap.String("id", g.ID), zap.Error(err))
		return
	}
	metrics.GenerationsRecordedTotal.Inc()
}
