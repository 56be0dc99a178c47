package polymarket

import "testing"

func TestToTick(t *testing.T) {
	tick, err := toTick(clobTrade{
		EventType: "last_trade_price",
		AssetID:   "0x1234",
		Price:     "0.615",
		Size:      "250.5",
		Timestamp: "1748779200000",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tick.MarketID != "0x1234" || tick.Price != 0.615 || tick.Size != 250.5 {
		t.Fatalf("unexpected tick: %+v", tick)
	}
	if tick.Timestamp != 1748779200 {
		t.Fatalf("timestamp must be unix seconds, got %d", tick.Timestamp)
	}
}

func TestToTickRejectsMalformed(t *testing.T) {
	cases := []clobTrade{
		{Price: "abc", Size: "1", Timestamp: "1748779200000"},
		{Price: "0.5", Size: "", Timestamp: "1748779200000"},
		{Price: "0.5", Size: "1", Timestamp: "soon"},
	}
	for _, c := range cases {
		if _, err := toTick(c); err == nil {
			t.Fatalf("expected error for %+v", c)
		}
	}
}
