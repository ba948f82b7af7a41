package resolve

import (
	"media-catalog/internal/items"
	"media-catalog/internal/metrics"
)

// Resolver attempts to classify one path into a typed item. Returning nil
// declines the path and passes it to the next resolver in the chain.
type Resolver interface {
	Name() string
	TryResolve(ctx *Context) items.Item
}

// Chain dispatches a resolution context to resolvers in registration order
// and returns the first non-nil result. Once a resolver claims a path, later
// resolvers are never consulted for it.
type Chain struct {
	resolvers []Resolver
}

// NewChain creates a chain over the given resolvers in priority order.
func NewChain(resolvers ...Resolver) *Chain {
	return &Chain{resolvers: resolvers}
}

// TryResolve returns the first resolver's claim on the context, or nil if
// every resolver declines.
func (c *Chain) TryResolve(ctx *Context) items.Item {
	for _, r := range c.resolvers {
		if it := r.TryResolve(ctx); it != nil {
			metrics.ResolverHits.WithLabelValues(r.Name()).Inc()
			return it
		}
	}
	return nil
}
