// Package dataset loads and generates candle sequences. Loading validates
// the ingestion invariants (strictly increasing timestamps, finite prices);
// parsing of exotic source formats is the data collaborator's job.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"capital-shield/internal/domain"
)

// csvColumns is the expected header of a candle CSV file.
var csvColumns = []string{"timestamp", "open", "high", "low", "close", "volume"}

// LoadCSV reads a candle CSV file into a validated dataset. The dataset ID
// is the file name without extension. The file must have the header
// timestamp,open,high,low,close,volume with millisecond timestamps.
func LoadCSV(path, assetID string) (*domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	base := filepath.Base(path)
	datasetID := strings.TrimSuffix(base, filepath.Ext(base))

	ds, err := ReadCSV(f, datasetID, assetID)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return ds, nil
}

// ReadCSV parses candle CSV content and validates the result.
func ReadCSV(r io.Reader, datasetID, assetID string) (*domain.Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var candles []domain.Candle
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if len(record) != len(csvColumns) {
			return nil, fmt.Errorf("%w: line %d: expected %d fields, got %d",
				domain.ErrValidation, line, len(csvColumns), len(record))
		}

		ts, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad timestamp %q", domain.ErrValidation, line, record[0])
		}

		vals := make([]float64, 5)
		for i := 0; i < 5; i++ {
			v, err := strconv.ParseFloat(record[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad %s %q",
					domain.ErrValidation, line, csvColumns[i+1], record[i+1])
			}
			vals[i] = v
		}

		candles = append(candles, domain.Candle{
			Timestamp: ts,
			Open:      vals[0],
			High:      vals[1],
			Low:       vals[2],
			Close:     vals[3],
			Volume:    vals[4],
		})
	}

	ds := &domain.Dataset{
		DatasetID: datasetID,
		AssetID:   assetID,
		Candles:   candles,
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func checkHeader(header []string) error {
	if len(header) != len(csvColumns) {
		return fmt.Errorf("%w: expected header %v, got %v", domain.ErrValidation, csvColumns, header)
	}
	for i, col := range csvColumns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return fmt.Errorf("%w: expected header column %q, got %q", domain.ErrValidation, col, header[i])
		}
	}
	return nil
}
