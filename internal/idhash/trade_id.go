package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// TradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(dataset_id|preset_name|mode|step|timestamp)
// Returns hex-encoded hash (64 characters).
func TradeID(datasetID, presetName, mode string, step int, timestamp int64) string {
	data := fmt.Sprintf("%s|%s|%s|%d|%d",
		datasetID,
		presetName,
		mode,
		step,
		timestamp,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// RunID computes a deterministic run identifier for one
// (dataset, preset, mode, seed) combination.
// Formula: SHA256(dataset_id|preset_name|mode|seed)
func RunID(datasetID, presetName, mode string, seed int64) string {
	data := fmt.Sprintf("%s|%s|%s|%d", datasetID, presetName, mode, seed)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
