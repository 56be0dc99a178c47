package conviction

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
	domsvc "github.com/Scotty108/Cascadian-sub002/internal/domain/service"
)

type fakeElites struct {
	positions map[string][]models.ElitePosition // by condition ID
	errFor    map[string]error
}

func (f *fakeElites) Fetch(_ context.Context, conditionID string, _ int) ([]models.ElitePosition, error) {
	if err, ok := f.errFor[conditionID]; ok {
		return nil, err
	}
	return f.positions[conditionID], nil
}

type fakeCategories struct {
	category string
	ok       bool
}

func (f *fakeCategories) Fetch(_ context.Context, _ string) (string, bool, error) {
	return f.category, f.ok, nil
}

type fakeSpecialists struct {
	m map[string]float64
}

func (f *fakeSpecialists) Fetch(_ context.Context, _ string) (map[string]float64, error) {
	return f.m, nil
}

func position(wallet string, side models.MarketSide, omega float64) models.ElitePosition {
	return models.ElitePosition{
		WalletAddress: wallet,
		Side:          side,
		Omega:         omega,
		Timestamp:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCompositeWeightedSum(t *testing.T) {
	// 8 elite positions, 7 on YES -> elite = 0.875
	// 5 specialists, 4 on YES   -> specialist = 0.80
	// omega weights 7.72 vs 2.28 -> omegaWeighted = 0.772
	positions := []models.ElitePosition{
		position("w1", models.SideYes, 1.0),
		position("w2", models.SideYes, 1.0),
		position("w3", models.SideYes, 1.0),
		position("w4", models.SideYes, 1.0),
		position("w5", models.SideYes, 1.0),
		position("w6", models.SideYes, 1.0),
		position("w7", models.SideYes, 1.72),
		position("w8", models.SideNo, 2.28),
	}
	specialists := map[string]float64{"w1": 3.1, "w2": 2.5, "w3": 2.2, "w4": 4.0, "w8": 2.9}

	s := NewScorer(nil, nil, nil)
	res := s.Score("mkt", "cond", models.SideYes, positions, specialists)

	if math.Abs(res.EliteConsensus-0.875) > 1e-9 {
		t.Fatalf("elite consensus: got %v", res.EliteConsensus)
	}
	if math.Abs(res.SpecialistConsensus-0.80) > 1e-9 {
		t.Fatalf("specialist consensus: got %v", res.SpecialistConsensus)
	}
	if math.Abs(res.OmegaWeighted-0.772) > 1e-9 {
		t.Fatalf("omega weighted: got %v", res.OmegaWeighted)
	}
	if math.Abs(res.Composite-0.832) > 1e-9 {
		t.Fatalf("composite: got %v want 0.832", res.Composite)
	}
	if res.MeetsEntryThreshold {
		t.Fatalf("0.832 must not meet the 0.9 default threshold")
	}
	if res.EliteTotal != 8 || res.EliteOnSide != 7 || res.SpecialistTotal != 5 || res.SpecialistOnSide != 4 {
		t.Fatalf("unexpected counts: %+v", res)
	}
}

func TestNeutralResultOnZeroPositions(t *testing.T) {
	s := NewScorer(nil, nil, nil)
	res := s.Score("mkt", "cond", models.SideYes, nil, map[string]float64{"w1": 3.0})

	for name, v := range map[string]float64{
		"elite":      res.EliteConsensus,
		"specialist": res.SpecialistConsensus,
		"omega":      res.OmegaWeighted,
		"composite":  res.Composite,
	} {
		if v != 0.5 {
			t.Fatalf("%s: got %v want 0.5", name, v)
		}
	}
	if res.MeetsEntryThreshold {
		t.Fatalf("neutral result must not meet threshold")
	}
	if res.EliteTotal != 0 || res.EliteOnSide != 0 || res.SpecialistTotal != 0 || res.SpecialistOnSide != 0 || res.TotalOmegaWeight != 0 {
		t.Fatalf("neutral result must have zero counts: %+v", res)
	}
}

func TestSpecialistFallbackToEliteConsensus(t *testing.T) {
	positions := []models.ElitePosition{
		position("w1", models.SideYes, 2.5),
		position("w2", models.SideYes, 2.5),
		position("w3", models.SideNo, 2.5),
		position("w4", models.SideYes, 2.5),
	}
	s := NewScorer(nil, nil, nil)
	// specialists exist for the category but none hold a position
	res := s.Score("mkt", "cond", models.SideYes, positions, map[string]float64{"other": 5.0})

	if res.SpecialistConsensus != res.EliteConsensus {
		t.Fatalf("expected fallback to elite consensus %v, got %v", res.EliteConsensus, res.SpecialistConsensus)
	}
	if res.SpecialistConsensus == 0.5 {
		t.Fatalf("fallback must not be the 0.5 neutral value here")
	}
}

func TestOmegaZeroWeightFallback(t *testing.T) {
	positions := []models.ElitePosition{
		position("w1", models.SideYes, 0),
		position("w2", models.SideNo, 0),
	}
	s := NewScorer(nil, nil, nil)
	res := s.Score("mkt", "cond", models.SideNo, positions, nil)

	if res.OmegaWeighted != 0.5 {
		t.Fatalf("zero total weight must fall back to 0.5, got %v", res.OmegaWeighted)
	}
}

func TestEntryThresholdConfiguration(t *testing.T) {
	unanimous := []models.ElitePosition{
		position("w1", models.SideYes, 3.0),
		position("w2", models.SideYes, 2.4),
	}

	s := NewScorer(nil, nil, nil)
	res := s.Score("mkt", "cond", models.SideYes, unanimous, map[string]float64{"w1": 3.0})
	if res.Composite != 1.0 || !res.MeetsEntryThreshold {
		t.Fatalf("unanimous positioning: composite=%v meets=%v", res.Composite, res.MeetsEntryThreshold)
	}

	// out-of-range overrides fall back to the default silently
	for _, bad := range []float64{-0.2, 1.5} {
		s := NewScorer(nil, nil, nil, WithEntryThreshold(bad))
		if s.EntryThreshold() != DefaultEntryThreshold {
			t.Fatalf("threshold %v accepted, want default", bad)
		}
	}

	low := NewScorer(nil, nil, nil, WithEntryThreshold(0.6))
	res = low.Score("mkt", "cond", models.SideYes, []models.ElitePosition{
		position("w1", models.SideYes, 2.1),
		position("w2", models.SideYes, 2.1),
		position("w3", models.SideNo, 2.1),
	}, nil)
	if !res.MeetsEntryThreshold {
		t.Fatalf("composite %v should meet the 0.6 threshold", res.Composite)
	}
}

func TestCalculateBothSides(t *testing.T) {
	elites := &fakeElites{positions: map[string][]models.ElitePosition{
		"cond": {
			position("w1", models.SideYes, 3.0),
			position("w2", models.SideYes, 3.0),
			position("w3", models.SideNo, 3.0),
		},
	}}
	s := NewScorer(elites, &fakeCategories{}, &fakeSpecialists{})

	yes, no, err := s.CalculateBothSides(context.Background(), "mkt", "cond", 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(yes.EliteConsensus-2.0/3.0) > 1e-9 || math.Abs(no.EliteConsensus-1.0/3.0) > 1e-9 {
		t.Fatalf("per-side consensus: yes=%v no=%v", yes.EliteConsensus, no.EliteConsensus)
	}
	// sides are scored independently; their elite consensus happens to be
	// complementary but composites need not sum to 1
	if yes.Side != models.SideYes || no.Side != models.SideNo {
		t.Fatalf("side mixup: %s / %s", yes.Side, no.Side)
	}
}

func TestCalculateBatchIsolation(t *testing.T) {
	elites := &fakeElites{
		positions: map[string][]models.ElitePosition{},
		errFor:    map[string]error{"cond-bad": fmt.Errorf("graphql indexer timeout")},
	}
	inputs := []domsvc.ConvictionInput{
		{MarketID: "mkt-bad", ConditionID: "cond-bad", Side: models.SideYes},
	}
	for i := 0; i < 7; i++ {
		cond := fmt.Sprintf("cond-%d", i)
		elites.positions[cond] = []models.ElitePosition{position("w1", models.SideYes, 2.5)}
		inputs = append(inputs, domsvc.ConvictionInput{
			MarketID:    fmt.Sprintf("mkt-%d", i),
			ConditionID: cond,
			Side:        models.SideYes,
		})
	}
	s := NewScorer(elites, &fakeCategories{}, &fakeSpecialists{}, WithBatchSize(3))

	results, failed := s.CalculateBatch(context.Background(), inputs)
	if len(results) != 7 {
		t.Fatalf("expected 7 results, got %d", len(results))
	}
	if failed != 1 {
		t.Fatalf("expected 1 failure, got %d", failed)
	}
	if _, ok := results[BatchKey("mkt-bad", models.SideYes)]; ok {
		t.Fatalf("failed item must be omitted")
	}
}
