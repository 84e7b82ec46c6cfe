package engine

import (
	"context"
	"testing"

	"capital-shield/internal/domain"
)

func snapshot(closes ...float64) Snapshot {
	return Snapshot{AssetID: "BTC-USD", Timestamp: 1000, Closes: closes}
}

func TestMock_ActionBands(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   domain.Action
	}{
		{"strong rise", []float64{100, 110}, domain.ActionBuy},
		{"strong fall", []float64{100, 90}, domain.ActionSell},
		{"mild rise", []float64{100, 103}, domain.ActionHold},
		{"mild fall", []float64{100, 97}, domain.ActionHold},
		{"exactly +5%", []float64{100, 105}, domain.ActionHold},
		{"exactly -5%", []float64{100, 95}, domain.ActionHold},
		{"single close", []float64{100}, domain.ActionHold},
		{"no closes", nil, domain.ActionHold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMock(1)
			trade, err := m.GenerateSignal(context.Background(), snapshot(tt.closes...))
			if err != nil {
				t.Fatalf("GenerateSignal failed: %v", err)
			}
			if trade.Action != tt.want {
				t.Errorf("Action = %s, want %s", trade.Action, tt.want)
			}
		})
	}
}

func TestMock_SameSeedSameStream(t *testing.T) {
	snaps := []Snapshot{
		snapshot(100, 110),
		snapshot(110, 104),
		snapshot(104, 95),
		snapshot(95, 96),
	}

	a := NewMock(42)
	b := NewMock(42)
	for i, snap := range snaps {
		ta, err := a.GenerateSignal(context.Background(), snap)
		if err != nil {
			t.Fatalf("GenerateSignal failed: %v", err)
		}
		tb, err := b.GenerateSignal(context.Background(), snap)
		if err != nil {
			t.Fatalf("GenerateSignal failed: %v", err)
		}
		if ta != tb {
			t.Errorf("Step %d: streams diverged: %+v != %+v", i, ta, tb)
		}
	}
}

func TestMock_DifferentSeedsDifferentConfidence(t *testing.T) {
	a := NewMock(1)
	b := NewMock(2)

	ta, _ := a.GenerateSignal(context.Background(), snapshot(100, 110))
	tb, _ := b.GenerateSignal(context.Background(), snapshot(100, 110))

	if ta.Action != tb.Action {
		t.Errorf("Seed must not change the action: %s != %s", ta.Action, tb.Action)
	}
	if ta.SignalConfidence == tb.SignalConfidence {
		t.Error("Expected different jitter for different seeds")
	}
}

func TestMock_ConfidenceBounds(t *testing.T) {
	m := NewMock(7)
	for i := 0; i < 200; i++ {
		trade, err := m.GenerateSignal(context.Background(), snapshot(100, 110))
		if err != nil {
			t.Fatalf("GenerateSignal failed: %v", err)
		}
		if trade.SignalConfidence < 0 || trade.SignalConfidence > 1 {
			t.Fatalf("Confidence %f out of [0,1] at call %d", trade.SignalConfidence, i)
		}
		if err := trade.Validate(); err != nil {
			t.Fatalf("Trade invalid at call %d: %v", i, err)
		}
	}
}

func TestScripted_ReplaysActions(t *testing.T) {
	script := []domain.Action{domain.ActionBuy, domain.ActionSell, domain.ActionBuy}
	s := NewScripted(script, 0.9)

	for i, want := range script {
		trade, err := s.GenerateSignal(context.Background(), snapshot(100))
		if err != nil {
			t.Fatalf("GenerateSignal failed: %v", err)
		}
		if trade.Action != want {
			t.Errorf("Step %d: got %s, want %s", i, trade.Action, want)
		}
		if trade.SignalConfidence != 0.9 {
			t.Errorf("Step %d: confidence %f, want 0.9", i, trade.SignalConfidence)
		}
	}

	// Past the end of the script the engine holds.
	trade, err := s.GenerateSignal(context.Background(), snapshot(100))
	if err != nil {
		t.Fatalf("GenerateSignal failed: %v", err)
	}
	if trade.Action != domain.ActionHold {
		t.Errorf("Expected HOLD past script end, got %s", trade.Action)
	}
}

func TestScripted_Constant(t *testing.T) {
	s := NewConstant(domain.ActionBuy, 0.8)

	for i := 0; i < 10; i++ {
		trade, err := s.GenerateSignal(context.Background(), snapshot(100))
		if err != nil {
			t.Fatalf("GenerateSignal failed: %v", err)
		}
		if trade.Action != domain.ActionBuy {
			t.Fatalf("Call %d: got %s, want BUY", i, trade.Action)
		}
	}
}
