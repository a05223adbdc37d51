package usecase

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stylistai/backend/internal/domain"
)

// MarketplaceAggregator fans a query out to every requested provider
// concurrently and merges the results.
type MarketplaceAggregator struct {
	providers map[string]domain.MarketplaceProvider
	order     []string
	logger    *zap.Logger
}

// NewMarketplaceAggregator creates an aggregator over the given
// providers. Dispatch order follows the order slice so merged results
// are deterministic.
func NewMarketplaceAggregator(providers []domain.MarketplaceProvider, logger *zap.Logger) *MarketplaceAggregator {
	byName := make(map[string]domain.MarketplaceProvider, len(providers))
	order := make([]string, 0, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
		order = append(order, p.Name())
	}
	return &MarketplaceAggregator{providers: byName, order: order, logger: logger}
}

// ProviderNames returns the registered provider names in dispatch order.
func (a *MarketplaceAggregator) ProviderNames() []string {
	return append([]string(nil), a.order...)
}

// Provider returns the named provider, or nil.
func (a *MarketplaceAggregator) Provider(name string) domain.MarketplaceProvider {
	return a.providers[name]
}

// Search dispatches the query to each requested marketplace concurrently
// and returns the merged, deduplicated results in dispatch order.
// Unknown and disabled providers are skipped. A failing provider
// contributes zero results without affecting the others; only when every
// dispatched provider fails does Search return ErrMarketplaceUnavailable.
func (a *MarketplaceAggregator) Search(
	ctx context.Context,
	query domain.SearchQuery,
	marketplaces []string,
	maxPerProvider int,
) ([]domain.Product, error) {
	if len(marketplaces) == 0 {
		marketplaces = a.order
	}

	a.logger.Info("searching marketplaces",
		zap.Strings("marketplaces", marketplaces),
		zap.String("query", query.Text),
	)

	type dispatch struct {
		name     string
		provider domain.MarketplaceProvider
	}
	var dispatched []dispatch
	for _, name := range marketplaces {
		provider, ok := a.providers[name]
		if !ok {
			a.logger.Warn("unknown marketplace", zap.String("marketplace", name))
			continue
		}
		if !provider.Enabled() {
			a.logger.Warn("marketplace disabled", zap.String("marketplace", name))
			continue
		}
		dispatched = append(dispatched, dispatch{name: name, provider: provider})
	}

	if len(dispatched) == 0 {
		a.logger.Warn("no enabled providers for search")
		return nil, nil
	}

	results := make([][]domain.Product, len(dispatched))
	var failures atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for i, d := range dispatched {
		g.Go(func() error {
			products, err := d.provider.Search(gctx, query.Inline(), maxPerProvider)
			if err != nil {
				failures.Add(1)
				a.logger.Error("provider search failed",
					zap.String("marketplace", d.name),
					zap.Error(err),
				)
				return nil // isolate the failure, keep the round going
			}
			a.logger.Info("provider returned products",
				zap.String("marketplace", d.name),
				zap.Int("count", len(products)),
			)
			results[i] = products
			return nil
		})
	}
	_ = g.Wait()

	if int(failures.Load()) == len(dispatched) {
		return nil, domain.ErrMarketplaceUnavailable
	}

	var merged []domain.Product
	for _, products := range results {
		merged = append(merged, products...)
	}
	merged = domain.DedupeProducts(merged)

	a.logger.Info("aggregation complete", zap.Int("total_deduped", len(merged)))
	return merged, nil
}
