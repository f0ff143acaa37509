// Package aggregator merges announcements from the list API, falls back to the
// home page scraper when the API has nothing, and orders the result for the feed.
package aggregator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/bidfeed/pkg/domain"
)

//go:generate moq -out mocks/primary.go -pkg mocks -skip-ensure -fmt goimports . Primary
//go:generate moq -out mocks/fallback.go -pkg mocks -skip-ensure -fmt goimports . Fallback

// DefaultMaxItems is the cap applied when none is configured
const DefaultMaxItems = 30

// Primary fetches all categories, one result per category
type Primary interface {
	Fetch(ctx context.Context, now time.Time) []domain.Result
}

// Fallback fetches a single result, used only when the primary source yields nothing
type Fallback interface {
	Fetch(ctx context.Context, now time.Time) domain.Result
}

// Aggregator collects items for a single feed run
type Aggregator struct {
	primary  Primary
	fallback Fallback // optional
	maxItems int
}

// New makes an aggregator, fallback may be nil to disable it
func New(primary Primary, fallback Fallback, maxItems int) *Aggregator {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &Aggregator{primary: primary, fallback: fallback, maxItems: maxItems}
}

// Collect returns the newest items across all categories, at most maxItems of them.
// Category and record failures are logged and dropped. The only error returned is
// the context error if the run was cancelled.
func (a *Aggregator) Collect(ctx context.Context, now time.Time) ([]domain.Item, error) {
	var items []domain.Item
	for _, res := range a.primary.Fetch(ctx, now) {
		items = append(items, accept(res)...)
	}

	if len(items) == 0 && a.fallback != nil {
		lgr.Printf("[WARN] api returned no items, trying home page")
		items = accept(a.fallback.Fetch(ctx, now))
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("collect items: %w", err)
	}

	return Arrange(items, a.maxItems), nil
}

// accept logs failures of a result and returns its valid items
func accept(res domain.Result) []domain.Item {
	if res.Err != nil {
		lgr.Printf("[WARN] %s source failed for %s: %v", res.Source, res.Category, res.Err)
		return nil
	}
	for _, skip := range res.Skipped {
		lgr.Printf("[WARN] %s source skipped %s %v", res.Source, res.Category, skip)
	}

	items := make([]domain.Item, 0, len(res.Items))
	for _, item := range res.Items {
		if err := item.Validate(); err != nil {
			lgr.Printf("[WARN] %s source produced invalid %s item %q: %v", res.Source, res.Category, item.Title, err)
			continue
		}
		items = append(items, item)
	}
	lgr.Printf("[INFO] %s: %d items from %s", res.Category, len(items), res.Source)
	return items
}

// Arrange sorts items by publish time, newest first, keeping the original order of equal
// times, and truncates the list to limit. The input slice is not modified.
func Arrange(items []domain.Item, limit int) []domain.Item {
	res := make([]domain.Item, len(items))
	copy(res, items)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Published.After(res[j].Published)
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res
}
