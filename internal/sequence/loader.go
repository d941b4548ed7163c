// Package sequence loads exception items for validation, reading through
// the cache before the repository.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/opensource-finance/bce/internal/cache"
	"github.com/opensource-finance/bce/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Loader fetches exception items with a cache-aside strategy.
type Loader struct {
	repo  domain.Repository
	store domain.Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewLoader creates a loader. A nil cache reads straight from the
// repository.
func NewLoader(repo domain.Repository, store domain.Cache, ttl time.Duration) *Loader {
	return &Loader{
		repo:  repo,
		store: store,
		ttl:   ttl,
	}
}

// Load returns the item's sequences in filed order. It returns
// domain.ErrNotFound when the item does not exist and domain.ErrNoSequences
// when it exists without sequences.
func (l *Loader) Load(ctx context.Context, tenantID string, itemNo int) (*domain.ExceptionItem, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", domain.ErrInvalidInput)
	}
	if itemNo <= 0 {
		return nil, fmt.Errorf("%w: itemNo must be positive", domain.ErrInvalidInput)
	}

	if l.store != nil {
		item, err := l.store.GetExceptionItem(ctx, tenantID, itemNo)
		if err != nil {
			// A broken cache entry is refetched, not fatal.
			slog.Warn("cache read failed", "tenant", tenantID, "item", itemNo, "error", err)
		} else if item != nil {
			return checkSequences(item)
		}
	}

	// Concurrent misses for the same item share one repository read.
	v, err, _ := l.group.Do(tenantID+"/"+strconv.Itoa(itemNo), func() (any, error) {
		item, err := l.repo.GetExceptionItem(ctx, tenantID, itemNo)
		if err != nil {
			return nil, err
		}
		if l.store != nil {
			if err := l.store.SetExceptionItem(ctx, tenantID, item, l.ttl); err != nil {
				slog.Warn("cache write failed", "tenant", tenantID, "item", itemNo, "error", err)
			}
		}
		return item, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("exception item %d: %w", itemNo, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load exception item %d: %w", itemNo, err)
	}

	return checkSequences(v.(*domain.ExceptionItem))
}

// Save stores an item and drops any cached copy.
func (l *Loader) Save(ctx context.Context, tenantID string, item *domain.ExceptionItem) error {
	if err := l.repo.SaveExceptionItem(ctx, tenantID, item); err != nil {
		return err
	}
	return l.Invalidate(ctx, tenantID, item.ItemNo)
}

// Invalidate drops the cached copy of an item.
func (l *Loader) Invalidate(ctx context.Context, tenantID string, itemNo int) error {
	if l.store == nil {
		return nil
	}
	if err := l.store.Delete(ctx, tenantID, cache.ItemKey(itemNo)); err != nil {
		return fmt.Errorf("failed to invalidate item %d: %w", itemNo, err)
	}
	return nil
}

func checkSequences(item *domain.ExceptionItem) (*domain.ExceptionItem, error) {
	if len(item.Sequences) == 0 {
		return item, fmt.Errorf("exception item %d: %w", item.ItemNo, domain.ErrNoSequences)
	}
	return item, nil
}
