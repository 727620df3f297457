package model

// Row is one extracted sample of a task.
// Row 是任务提取出的一个样本。
type Row struct {
	TimestampNs int64          `json:"mcap_timestamp_ns"`
	Raw         map[string]any `json:"raw"`
	ParsedValue any            `json:"parsed_value"`
}

// TaskResult is the ordered row series of one task across all input files.
// TaskResult 是单个任务在所有输入文件中的有序行序列。
type TaskResult struct {
	TaskID     string
	TopicName  string
	FieldNames []string
	Rows       []Row
}

// Len returns the number of rows.
func (r TaskResult) Len() int { return len(r.Rows) }

// Stats are the summary statistics of one numeric series.
type Stats struct {
	Mean  float64 `yaml:"mean"`
	Std   float64 `yaml:"std"`
	Max   float64 `yaml:"max"`
	Min   float64 `yaml:"min"`
	Count int     `yaml:"count"`
}

// TimestampSummary holds the period/frequency/jitter analysis.
type TimestampSummary struct {
	SpecifiedFrequencyHz float64 `yaml:"specified_frequency_hz"`
	ExpectedPeriodS      float64 `yaml:"expected_period_s"`
	PeriodS              Stats   `yaml:"period_s"`
	FrequencyHz          Stats   `yaml:"frequency_hz"`
	JitterDriftS         Stats   `yaml:"jitter_drift_s"`
}

// Summary is the analyzer output. A zero Summary is "empty".
// Summary 是分析器输出，零值表示空结果。
type Summary struct {
	BasicStats *Stats            `yaml:"basic_stats,omitempty"`
	Timestamp  *TimestampSummary `yaml:"timestamp,omitempty"`
}

// Empty reports whether no statistics were produced.
func (s Summary) Empty() bool {
	return s.BasicStats == nil && s.Timestamp == nil
}

// AnalysisResult is what gets reported for one task.
// AnalysisResult 是单个任务的报告内容。
type AnalysisResult struct {
	TaskID       string  `yaml:"task_id"`
	TopicName    string  `yaml:"topic_name"`
	AnalysisType string  `yaml:"analysis_type"`
	Summary      Summary `yaml:"summary"`
	StartTimeNs  int64   `yaml:"start_time_ns"`
	EndTimeNs    int64   `yaml:"end_time_ns"`
	RowCount     int     `yaml:"row_count"`
}
