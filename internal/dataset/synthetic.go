package dataset

import (
	"math/rand"

	"capital-shield/internal/domain"
)

// candleStepMs is the synthetic candle spacing (one day).
const candleStepMs = int64(24 * 60 * 60 * 1000)

// syntheticStartMs is 2024-01-01T00:00:00Z, the first synthetic timestamp.
const syntheticStartMs = int64(1704067200000)

// RandomWalk generates a seeded random-walk dataset for testing. Returns
// are drawn from a normal distribution with the given volatility.
func RandomWalk(datasetID, assetID string, numCandles int, startPrice, volatility float64, seed int64) *domain.Dataset {
	rng := rand.New(rand.NewSource(seed))

	prices := make([]float64, numCandles)
	price := startPrice
	for i := 0; i < numCandles; i++ {
		if i > 0 {
			price *= 1 + rng.NormFloat64()*volatility
			if price < 0.01 {
				price = 0.01
			}
		}
		prices[i] = price
	}

	return fromCloses(datasetID, assetID, prices)
}

// StepwiseCrash generates a deterministic stress path: the price rises
// riseStep per candle until crashStart, then declines dropStep per candle.
// The resulting drawdown from the peak after k down candles is
// 1-(1-dropStep)^k, so the candle where it first exceeds a threshold is
// exactly computable.
func StepwiseCrash(datasetID, assetID string, numCandles, crashStart int, startPrice, riseStep, dropStep float64) *domain.Dataset {
	prices := make([]float64, numCandles)
	price := startPrice
	for i := 0; i < numCandles; i++ {
		if i > 0 {
			if i < crashStart {
				price *= 1 + riseStep
			} else {
				price *= 1 - dropStep
			}
		}
		prices[i] = price
	}

	return fromCloses(datasetID, assetID, prices)
}

// BearTrend generates a deterministic monotonic decline of declineStep per
// candle, used to force a BEAR regime classification.
func BearTrend(datasetID, assetID string, numCandles int, startPrice, declineStep float64) *domain.Dataset {
	prices := make([]float64, numCandles)
	price := startPrice
	for i := 0; i < numCandles; i++ {
		if i > 0 {
			price *= 1 - declineStep
		}
		prices[i] = price
	}

	return fromCloses(datasetID, assetID, prices)
}

// FlatTrend generates a constant-price dataset.
func FlatTrend(datasetID, assetID string, numCandles int, price float64) *domain.Dataset {
	prices := make([]float64, numCandles)
	for i := range prices {
		prices[i] = price
	}
	return fromCloses(datasetID, assetID, prices)
}

// fromCloses builds flat OHLC candles from a close-price path.
func fromCloses(datasetID, assetID string, closes []float64) *domain.Dataset {
	candles := make([]domain.Candle, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		high, low := open, open
		if c > high {
			high = c
		}
		if c < low {
			low = c
		}
		candles[i] = domain.Candle{
			Timestamp: syntheticStartMs + int64(i)*candleStepMs,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     c,
			Volume:    1000,
		}
	}

	return &domain.Dataset{
		DatasetID: datasetID,
		AssetID:   assetID,
		Candles:   candles,
	}
}
