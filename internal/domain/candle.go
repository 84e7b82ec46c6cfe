package domain

import (
	"fmt"
	"math"
)

// Candle represents one OHLCV bar of market data.
// Timestamps are Unix milliseconds.
type Candle struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Dataset is an ordered, immutable candle sequence for one asset.
// Candles must have strictly increasing timestamps and finite prices.
type Dataset struct {
	DatasetID string
	AssetID   string
	Candles   []Candle
}

// Validate checks the ingestion invariants: non-empty candle sequence,
// strictly increasing timestamps, finite and positive prices.
// Returns a wrapped ErrValidation describing the first violation.
func (d *Dataset) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil dataset", ErrValidation)
	}
	if d.DatasetID == "" {
		return fmt.Errorf("%w: dataset has empty dataset_id", ErrValidation)
	}
	if d.AssetID == "" {
		return fmt.Errorf("%w: dataset %s has empty asset_id", ErrValidation, d.DatasetID)
	}
	if len(d.Candles) == 0 {
		return fmt.Errorf("%w: dataset %s has no candles", ErrValidation, d.DatasetID)
	}

	var prev int64 = math.MinInt64
	for i, c := range d.Candles {
		if c.Timestamp <= prev {
			return fmt.Errorf("%w: dataset %s candle %d: timestamp %d not strictly increasing (prev %d)",
				ErrValidation, d.DatasetID, i, c.Timestamp, prev)
		}
		prev = c.Timestamp

		for _, v := range [...]float64{c.Open, c.High, c.Low, c.Close} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
				return fmt.Errorf("%w: dataset %s candle %d: non-finite or non-positive price",
					ErrValidation, d.DatasetID, i)
			}
		}
		if math.IsNaN(c.Volume) || math.IsInf(c.Volume, 0) || c.Volume < 0 {
			return fmt.Errorf("%w: dataset %s candle %d: invalid volume", ErrValidation, d.DatasetID, i)
		}
	}

	return nil
}

// Closes returns the close prices in candle order.
func (d *Dataset) Closes() []float64 {
	closes := make([]float64, len(d.Candles))
	for i, c := range d.Candles {
		closes[i] = c.Close
	}
	return closes
}
