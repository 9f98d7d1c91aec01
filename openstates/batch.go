package openstates

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/openstates/collection"
)

// DefaultConcurrency bounds parallel requests in batch fetches
const DefaultConcurrency = 4

type fetchFunc func(ctx context.Context, client *Client, id string) (*collection.Collection, error)

// GetBills fetches several bills concurrently
func (c *Client) GetBills(ctx context.Context, ids []string, params Params, concurrency int) ([]*collection.Collection, error) {
	return c.fetchMany(ctx, ids, concurrency, func(ctx context.Context, client *Client, id string) (*collection.Collection, error) {
		return client.GetBill(ctx, id, params)
	})
}

// GetCommittees fetches several committees concurrently
func (c *Client) GetCommittees(ctx context.Context, ids []string, params Params, concurrency int) ([]*collection.Collection, error) {
	return c.fetchMany(ctx, ids, concurrency, func(ctx context.Context, client *Client, id string) (*collection.Collection, error) {
		return client.GetCommittee(ctx, id, params)
	})
}

// fetchMany runs fetch for every id on its own clone of c. The first error
// cancels the remaining requests. On success the last status seen, in input
// order, is copied back onto c.
func (c *Client) fetchMany(ctx context.Context, ids []string, concurrency int, fetch fetchFunc) ([]*collection.Collection, error) {
	if err := c.checkKey(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*collection.Collection{}, nil
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]*collection.Collection, len(ids))
	clones := make([]*Client, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, id := range ids {
		clone := c.Clone()
		clones[i] = clone

		g.Go(func() error {
			data, err := fetch(ctx, clone, id)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", id, err)
			}
			results[i] = data
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, clone := range clones {
		if clone.status != c.status && clone.status != nil {
			c.status = clone.status
		}
	}

	c.logger.Debug().Int("count", len(ids)).Int("concurrency", concurrency).Msg("Batch fetch complete")
	return results, nil
}
