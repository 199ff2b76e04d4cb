// internal/services/trace.go
package services

import (
	"context"
	"sync"

	"github.com/javajoker/story-mcp/internal/blockchain"
	"github.com/javajoker/story-mcp/internal/pil"
)

type traceKey struct{}

// Trace collects side effects of one tool call for the audit log. The
// transport attaches it to the context, services append to it.
type Trace struct {
	mu       sync.Mutex
	txHashes []string
	warnings []string
}

func WithTrace(ctx context.Context) (context.Context, *Trace) {
	t := &Trace{}
	return context.WithValue(ctx, traceKey{}, t), t
}

func TraceFromContext(ctx context.Context) *Trace {
	t, _ := ctx.Value(traceKey{}).(*Trace)
	return t
}

func (t *Trace) TxHashes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.txHashes...)
}

func (t *Trace) Warnings() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.warnings...)
}

func traceTx(ctx context.Context, txs ...*blockchain.TxResult) {
	t := TraceFromContext(ctx)
	if t == nil {
		return
	}
	hashes := TxHashes(txs...)
	t.mu.Lock()
	t.txHashes = append(t.txHashes, hashes...)
	t.mu.Unlock()
}

func traceWarnings(ctx context.Context, warnings []pil.AmbiguousOverrideWarning) {
	t := TraceFromContext(ctx)
	if t == nil || len(warnings) == 0 {
		return
	}
	t.mu.Lock()
	for _, w := range warnings {
		t.warnings = append(t.warnings, w.String())
	}
	t.mu.Unlock()
}
