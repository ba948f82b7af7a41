package resolve

import "sync"

// Hook inspects a resolution context at a checkpoint and votes on whether to
// cancel it. Returning true is a cancellation vote; a hook may equivalently
// call ctx.Cancel. Every registered hook runs even after an earlier one has
// voted to cancel, so later hooks always see the final context.
type Hook func(*Context) bool

// hookSet is an ordered, concurrency-safe list of hooks for one checkpoint.
type hookSet struct {
	mu    sync.RWMutex
	hooks []Hook
}

func (s *hookSet) add(h Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

// run invokes all hooks in registration order and returns the logical OR of
// their votes. The context's cancelled flag is set accordingly.
func (s *hookSet) run(ctx *Context) bool {
	s.mu.RLock()
	hooks := s.hooks
	s.mu.RUnlock()

	for _, h := range hooks {
		if h(ctx) {
			ctx.Cancel()
		}
	}
	return ctx.Cancelled()
}
