package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/chazu/urdfkit/pkg/graph"
)

// EvalTimeout bounds a single recipe evaluation.
const EvalTimeout = 5 * time.Second

// outcome carries an evaluation back from its goroutine.
type outcome struct {
	graph *graph.Graph
	errs  []EvalError
	err   error
}

// ticket identifies one Evaluate call. Its outcome is only used while n is
// still the latest number issued.
type ticket struct {
	n      uint64
	latest *atomic.Uint64
}

func (t ticket) stale() bool {
	return t.latest.Load() != t.n
}

// await blocks for at most limit on results. An evaluation that overruns
// keeps its goroutine; the buffered channel absorbs its late send.
func await(results <-chan outcome, limit time.Duration, t ticket) (*graph.Graph, []EvalError, error) {
	ctx, cancel := context.WithTimeout(context.Background(), limit)
	defer cancel()

	select {
	case o := <-results:
		if t.stale() {
			return nil, nil, ErrSuperseded
		}
		return o.graph, o.errs, o.err
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, limit)
	}
}
