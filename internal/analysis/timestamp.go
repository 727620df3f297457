package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/livp123/mcapstat/internal/model"
	mcaperrors "github.com/livp123/mcapstat/pkg/errors"
)

// Timestamp column sources.
const (
	SourceParsed  = "parsed"
	SourceLogTime = "log_time"
)

// Timestamp checks a series against a nominal frequency: inter-sample
// period, instantaneous frequency, and phase deviation from an ideal tick
// grid anchored at the first sample.
// Timestamp 分析器检查时间序列的周期、频率与相对理想节拍的抖动。
type Timestamp struct {
	FrequencyHz float64
	Source      string
}

// NewTimestamp parses "timestamp(freq:F[,source:parsed|log_time])".
// F must be present and positive.
func NewTimestamp(analysisType string) (*Timestamp, error) {
	t := strings.TrimSpace(analysisType)
	if !strings.HasPrefix(t, TypeTimestamp) {
		return nil, mcaperrors.NewConfigError("analysis_type", analysisType)
	}
	args := strings.TrimSpace(strings.TrimPrefix(t, TypeTimestamp))
	if args == "" {
		return nil, mcaperrors.NewConfigError("analysis_type", analysisType+" (freq is required)")
	}
	if !strings.HasPrefix(args, "(") || !strings.HasSuffix(args, ")") {
		return nil, mcaperrors.NewConfigError("analysis_type", analysisType)
	}
	args = args[1 : len(args)-1]

	ts := &Timestamp{Source: SourceParsed}
	var haveFreq bool
	for _, part := range strings.Split(args, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, ":")
		if !ok {
			return nil, mcaperrors.NewConfigError("analysis_type", analysisType)
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		switch key {
		case "freq":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, mcaperrors.NewConfigError("freq", value)
			}
			if f <= 0 {
				return nil, mcaperrors.NewConfigError("freq", fmt.Sprintf("%v (must be positive)", f))
			}
			ts.FrequencyHz = f
			haveFreq = true
		case "source":
			if value != SourceParsed && value != SourceLogTime {
				return nil, mcaperrors.NewConfigError("source", value)
			}
			ts.Source = value
		default:
			return nil, mcaperrors.NewConfigError("analysis_type", analysisType+" (unknown option "+key+")")
		}
	}
	if !haveFreq {
		return nil, mcaperrors.NewConfigError("analysis_type", analysisType+" (freq is required)")
	}
	return ts, nil
}

// Type returns "timestamp".
func (t *Timestamp) Type() string { return TypeTimestamp }

// ExpectedPeriodNs is 1e9 / F.
func (t *Timestamp) ExpectedPeriodNs() float64 { return 1e9 / t.FrequencyHz }

// Analyze computes period, frequency and jitter statistics. Fewer than two
// rows gives an empty summary. Duplicate or out-of-order stamps only drop out
// of the frequency series.
func (t *Timestamp) Analyze(result model.TaskResult) (model.Summary, error) {
	if result.Len() < 2 {
		return model.Summary{}, nil
	}

	stamps, err := t.column(result)
	if err != nil {
		return model.Summary{}, err
	}

	periods := make([]float64, 0, len(stamps)-1)
	freqs := make([]float64, 0, len(stamps)-1)
	for i := 1; i < len(stamps); i++ {
		d := stamps[i] - stamps[i-1]
		periods = append(periods, float64(d)/1e9)
		if d > 0 {
			freqs = append(freqs, 1e9/float64(d))
		}
	}

	period := t.ExpectedPeriodNs()
	jitter := make([]float64, 0, len(stamps))
	for _, ts := range stamps {
		jitter = append(jitter, Deviation(ts-stamps[0], period)/1e9)
	}

	return model.Summary{Timestamp: &model.TimestampSummary{
		SpecifiedFrequencyHz: t.FrequencyHz,
		ExpectedPeriodS:      period / 1e9,
		PeriodS:              describe(periods),
		FrequencyHz:          describe(freqs),
		JitterDriftS:         describe(jitter),
	}}, nil
}

func (t *Timestamp) column(result model.TaskResult) ([]int64, error) {
	stamps := make([]int64, len(result.Rows))
	for i, row := range result.Rows {
		if t.Source == SourceLogTime {
			stamps[i] = row.TimestampNs
			continue
		}
		v, ok := model.ToInt64(row.ParsedValue)
		if !ok {
			return nil, mcaperrors.NewNonNumericError("parsed_value", row.ParsedValue)
		}
		stamps[i] = v
	}
	return stamps, nil
}

// Deviation returns ((offset + T/2) mod T) - T/2 in nanoseconds, using a
// floored modulo so the result stays in [-T/2, T/2) for negative offsets too.
// Deviation 返回相对最近理想节拍的相位偏差（纳秒）。
func Deviation(offsetNs int64, periodNs float64) float64 {
	half := periodNs / 2
	m := math.Mod(float64(offsetNs)+half, periodNs)
	if m < 0 {
		m += periodNs
	}
	if m >= periodNs {
		m = 0
	}
	return m - half
}
