package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/livp123/mcapstat/internal/model"
	mcaperrors "github.com/livp123/mcapstat/pkg/errors"
)

// BasicStats reports mean, sample standard deviation, max, min and count of
// the parsed values. NaN values are left out of every statistic.
type BasicStats struct{}

// Type returns "basic_stats".
func (BasicStats) Type() string { return TypeBasicStats }

// Analyze computes the statistics. No rows gives an empty summary.
func (BasicStats) Analyze(result model.TaskResult) (model.Summary, error) {
	if result.Len() == 0 {
		return model.Summary{}, nil
	}

	values := make([]float64, 0, result.Len())
	for _, row := range result.Rows {
		v, ok := numericValue(row.ParsedValue)
		if !ok {
			return model.Summary{}, mcaperrors.NewNonNumericError("parsed_value", row.ParsedValue)
		}
		if math.IsNaN(v) {
			continue
		}
		values = append(values, v)
	}

	s := describe(values)
	return model.Summary{BasicStats: &s}, nil
}

// numericValue accepts numbers only; bools and strings are not statistics.
func numericValue(v any) (float64, bool) {
	if _, isBool := v.(bool); isBool {
		return 0, false
	}
	return model.ToFloat64(v)
}

// describe summarizes a series. An empty series yields NaN fields.
// describe 汇总一个序列，空序列返回 NaN。
func describe(xs []float64) model.Stats {
	if len(xs) == 0 {
		nan := math.NaN()
		return model.Stats{Mean: nan, Std: nan, Max: nan, Min: nan}
	}
	return model.Stats{
		Mean:  stat.Mean(xs, nil),
		Std:   stat.StdDev(xs, nil),
		Max:   floats.Max(xs),
		Min:   floats.Min(xs),
		Count: len(xs),
	}
}
