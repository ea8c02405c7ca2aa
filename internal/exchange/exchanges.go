package exchange

import (
	"context"
	"fmt"
	"slices"

	"github.com/UnknownOlympus/verdeando/internal/models"
)

// List fetches the session user's exchanges and caches them.
func (c *Coordinator) List(ctx context.Context) ([]models.Exchange, error) {
	user, err := c.session.Current()
	if err != nil {
		return nil, err
	}

	exchanges, err := c.backend.ListExchanges(ctx, user.Token, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}

	c.mu.Lock()
	c.exchanges = slices.Clone(exchanges)
	c.mu.Unlock()

	return exchanges, nil
}

// Cached returns the exchange list from the last successful List or Submit.
func (c *Coordinator) Cached() []models.Exchange {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.exchanges)
}

// Submit opens a pending exchange for the session user. The exchange stays pending
// until a collaborator confirms its token.
func (c *Coordinator) Submit(ctx context.Context, req models.ExchangeRequest) (models.Exchange, error) {
	if len(req.Lines) == 0 {
		return models.Exchange{}, fmt.Errorf("exchange has no materials")
	}

	user, err := c.session.Current()
	if err != nil {
		return models.Exchange{}, err
	}

	created, err := c.backend.CreateExchange(ctx, user.Token, user.ID, req)
	if err != nil {
		return models.Exchange{}, fmt.Errorf("failed to create exchange: %w", err)
	}

	c.mu.Lock()
	c.exchanges = append(c.exchanges, created)
	c.mu.Unlock()

	c.log.InfoContext(ctx, "Exchange submitted", "exchange", created.ID, "lines", len(req.Lines))

	return created, nil
}

// RecycledWeight sums the total weight of completed exchanges.
func RecycledWeight(exchanges []models.Exchange) float64 {
	var total float64
	for _, e := range exchanges {
		if e.State.Completed() {
			total += e.TotalWeight
		}
	}

	return total
}
