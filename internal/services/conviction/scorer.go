package conviction

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
	domrepo "github.com/Scotty108/Cascadian-sub002/internal/domain/repository"
	applogger "github.com/Scotty108/Cascadian-sub002/pkg/logger"
)

// Elite-wallet eligibility, defined once and reused everywhere: lifetime
// omega above the threshold and at least the minimum resolved bets.
const (
	EliteOmegaThreshold = 2.0
	EliteMinResolved    = 10
)

// Composite weights for the three component scores.
const (
	WeightElite      = 0.5
	WeightSpecialist = 0.3
	WeightOmega      = 0.2
)

// DefaultEntryThreshold is the composite score required for an entry signal.
const DefaultEntryThreshold = 0.9

// Scorer computes directional conviction from elite-wallet positioning.
type Scorer struct {
	elites      domrepo.EliteWalletRegistry
	categories  domrepo.CategoryRegistry
	specialists domrepo.SpecialistRegistry
	threshold   float64
	batchSize   int
	metrics     domrepo.Metrics
	l           *applogger.Logger
}

// Option configures Scorer.
type Option func(*Scorer)

// WithEntryThreshold overrides the entry threshold. Values outside [0,1]
// are ignored and the default is kept; the threshold is a tunable, not a
// correctness-critical input.
func WithEntryThreshold(v float64) Option {
	return func(s *Scorer) {
		if v >= 0 && v <= 1 {
			s.threshold = v
		}
	}
}

// WithBatchSize sets the fixed batch size for CalculateBatch.
func WithBatchSize(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithLogger injects a structured logger.
func WithLogger(l *applogger.Logger) Option {
	return func(s *Scorer) { s.l = l }
}

// WithMetrics injects a domain metrics recorder.
func WithMetrics(m domrepo.Metrics) Option {
	return func(s *Scorer) { s.metrics = m }
}

// NewScorer creates a conviction scorer over the wallet registries.
func NewScorer(elites domrepo.EliteWalletRegistry, categories domrepo.CategoryRegistry, specialists domrepo.SpecialistRegistry, opts ...Option) *Scorer {
	s := &Scorer{
		elites:      elites,
		categories:  categories,
		specialists: specialists,
		threshold:   DefaultEntryThreshold,
		batchSize:   5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EntryThreshold returns the configured composite threshold.
func (s *Scorer) EntryThreshold() float64 { return s.threshold }

// Calculate fetches positioning data and scores one market side.
func (s *Scorer) Calculate(ctx context.Context, marketID, conditionID string, side models.MarketSide, lookbackHours int) (*models.ConvictionResult, error) {
	if !side.IsValid() {
		return nil, fmt.Errorf("conviction: invalid side %q", side)
	}
	start := time.Now()
	lookbackHours = domrepo.NormalizeLookbackHours(lookbackHours)

	positions, err := s.elites.Fetch(ctx, conditionID, lookbackHours)
	if err != nil {
		return nil, fmt.Errorf("fetch elite positions %s: %w", conditionID, err)
	}

	specialists := map[string]float64{}
	category, ok, err := s.categories.Fetch(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("fetch category %s: %w", marketID, err)
	}
	if ok {
		specialists, err = s.specialists.Fetch(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("fetch specialists %s: %w", category, err)
		}
	}

	res := s.Score(marketID, conditionID, side, positions, specialists)
	if s.metrics != nil {
		s.metrics.RecordSignalComputed("conviction", marketID)
		s.metrics.RecordLatency("conviction_calculate", time.Since(start).Seconds())
	}
	return res, nil
}

// Score computes conviction from already-fetched data. Pure given its
// inputs, except for the result timestamp.
func (s *Scorer) Score(marketID, conditionID string, side models.MarketSide, positions []models.ElitePosition, specialists map[string]float64) *models.ConvictionResult {
	res := &models.ConvictionResult{
		MarketID:    marketID,
		ConditionID: conditionID,
		Side:        side,
		Timestamp:   time.Now(),
	}

	// No elite positions means no signal: neutral across the board.
	// Documented fallback, not an error.
	if len(positions) == 0 {
		res.EliteConsensus = 0.5
		res.SpecialistConsensus = 0.5
		res.OmegaWeighted = 0.5
		res.Composite = 0.5
		return res
	}

	var (
		onSide     int
		specTotal  int
		specOnSide int
		weightYes  float64
		weightNo   float64
	)
	for _, p := range positions {
		if p.Side == side {
			onSide++
		}
		if _, isSpecialist := specialists[p.WalletAddress]; isSpecialist {
			specTotal++
			if p.Side == side {
				specOnSide++
			}
		}
		if p.Side == models.SideYes {
			weightYes += p.Omega
		} else {
			weightNo += p.Omega
		}
	}

	res.EliteTotal = len(positions)
	res.EliteOnSide = onSide
	res.EliteConsensus = float64(onSide) / float64(len(positions))

	res.SpecialistTotal = specTotal
	res.SpecialistOnSide = specOnSide
	if specTotal > 0 {
		res.SpecialistConsensus = float64(specOnSide) / float64(specTotal)
	} else {
		// no specialists hold a position: fall back to elite consensus
		res.SpecialistConsensus = res.EliteConsensus
	}

	totalWeight := weightYes + weightNo
	res.TotalOmegaWeight = totalWeight
	if totalWeight > 0 {
		if side == models.SideYes {
			res.OmegaWeighted = weightYes / totalWeight
		} else {
			res.OmegaWeighted = weightNo / totalWeight
		}
	} else {
		res.OmegaWeighted = 0.5
	}

	res.Composite = WeightElite*res.EliteConsensus +
		WeightSpecialist*res.SpecialistConsensus +
		WeightOmega*res.OmegaWeighted
	res.MeetsEntryThreshold = res.Composite >= s.threshold
	return res
}

// CalculateBothSides scores YES and NO independently and in parallel.
func (s *Scorer) CalculateBothSides(ctx context.Context, marketID, conditionID string, lookbackHours int) (yes, no *models.ConvictionResult, err error) {
	var (
		wg            sync.WaitGroup
		yesErr, noErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		yes, yesErr = s.Calculate(ctx, marketID, conditionID, models.SideYes, lookbackHours)
	}()
	go func() {
		defer wg.Done()
		no, noErr = s.Calculate(ctx, marketID, conditionID, models.SideNo, lookbackHours)
	}()
	wg.Wait()

	if yesErr != nil {
		return nil, nil, yesErr
	}
	if noErr != nil {
		return nil, nil, noErr
	}
	return yes, no, nil
}
