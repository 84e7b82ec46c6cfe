package idhash

import "testing"

func TestTradeID_Stable(t *testing.T) {
	a := TradeID("btc-daily", "BALANCED", "SHIELDED", 7, 1704067200000)
	b := TradeID("btc-daily", "BALANCED", "SHIELDED", 7, 1704067200000)
	if a != b {
		t.Errorf("Same inputs produced different IDs: %s != %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(a))
	}
}

func TestTradeID_Distinct(t *testing.T) {
	base := TradeID("btc-daily", "BALANCED", "SHIELDED", 7, 1704067200000)
	variants := []string{
		TradeID("eth-daily", "BALANCED", "SHIELDED", 7, 1704067200000),
		TradeID("btc-daily", "AGGRESSIVE", "SHIELDED", 7, 1704067200000),
		TradeID("btc-daily", "BALANCED", "BASELINE", 7, 1704067200000),
		TradeID("btc-daily", "BALANCED", "SHIELDED", 8, 1704067200000),
		TradeID("btc-daily", "BALANCED", "SHIELDED", 7, 1704067200001),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("Variant %d collides with base ID", i)
		}
	}
}

func TestRunID_Stable(t *testing.T) {
	a := RunID("btc-daily", "BALANCED", "SHIELDED", 42)
	b := RunID("btc-daily", "BALANCED", "SHIELDED", 42)
	if a != b {
		t.Errorf("Same inputs produced different run IDs: %s != %s", a, b)
	}
	if RunID("btc-daily", "BALANCED", "SHIELDED", 43) == a {
		t.Error("Different seeds must produce different run IDs")
	}
	if RunID("btc-daily", "BALANCED", "BASELINE", 42) == a {
		t.Error("Different modes must produce different run IDs")
	}
}
