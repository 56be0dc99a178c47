package indicator

import (
	"context"
	"sync"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
	applogger "github.com/Scotty108/Cascadian-sub002/pkg/logger"
)

// CalculateBatch computes the indicator for many markets with bounded
// concurrency. One market's failure never aborts its siblings: failures are
// logged, counted, and omitted from the result map.
func (c *Calculator) CalculateBatch(ctx context.Context, marketIDs []string, lookbackMinutes int) (map[string]*models.TSIResult, int) {
	results := make(map[string]*models.TSIResult, len(marketIDs))
	sem := make(chan struct{}, c.concurrency)

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		failed int
	)
	for _, id := range marketIDs {
		wg.Add(1)
		go func(marketID string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := c.Calculate(ctx, marketID, lookbackMinutes)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				if c.metrics != nil {
					c.metrics.RecordBatchFailure("tsi")
				}
				if c.l != nil {
					c.l.Warn("tsi batch item failed",
						applogger.String("market_id", marketID),
						applogger.Error(err),
					)
				}
				return
			}
			results[marketID] = res
		}(id)
	}
	wg.Wait()
	return results, failed
}
