package conviction

import (
	"context"
	"sync"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
	domrepo "github.com/Scotty108/Cascadian-sub002/internal/domain/repository"
	domsvc "github.com/Scotty108/Cascadian-sub002/internal/domain/service"
	applogger "github.com/Scotty108/Cascadian-sub002/pkg/logger"
)

// BatchKey identifies one scored side in a batch result map.
func BatchKey(marketID string, side models.MarketSide) string {
	return marketID + ":" + string(side)
}

// CalculateBatch scores many market sides in fixed-size batches. Items in a
// batch run in parallel; a failed item is logged, counted, and omitted from
// the result map, never retried and never aborting its siblings.
func (s *Scorer) CalculateBatch(ctx context.Context, inputs []domsvc.ConvictionInput) (map[string]*models.ConvictionResult, int) {
	results := make(map[string]*models.ConvictionResult, len(inputs))

	var (
		mu     sync.Mutex
		failed int
	)
	for start := 0; start < len(inputs); start += s.batchSize {
		end := start + s.batchSize
		if end > len(inputs) {
			end = len(inputs)
		}

		var wg sync.WaitGroup
		for _, in := range inputs[start:end] {
			wg.Add(1)
			go func(in domsvc.ConvictionInput) {
				defer wg.Done()
				res, err := s.Calculate(ctx, in.MarketID, in.ConditionID, in.Side, domrepo.DefaultLookbackHours)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failed++
					if s.metrics != nil {
						s.metrics.RecordBatchFailure("conviction")
					}
					if s.l != nil {
						s.l.Warn("conviction batch item failed",
							applogger.String("market_id", in.MarketID),
							applogger.String("side", string(in.Side)),
							applogger.Error(err),
						)
					}
					return
				}
				results[BatchKey(in.MarketID, in.Side)] = res
			}(in)
		}
		wg.Wait()
	}
	return results, failed
}
