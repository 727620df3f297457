package model

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// AnalysisTask is one configured extraction + analysis job.
// AnalysisTask 表示一个已配置的提取与分析任务。
type AnalysisTask struct {
	ID           string    `yaml:"id" json:"id"`
	TopicName    string    `yaml:"topic_name" json:"topic_name"`
	FieldNames   FieldList `yaml:"field_names" json:"field_names"`
	ParseString  string    `yaml:"parse_string" json:"parse_string"`
	AnalysisType string    `yaml:"analysis_type" json:"analysis_type"`
}

// FieldList is an ordered list of field paths.
// It accepts either a YAML sequence or a comma-separated string.
// FieldList 是有序的字段路径列表，支持 YAML 序列或逗号分隔字符串。
type FieldList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *FieldList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*f = SplitFieldNames(node.Value)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
		*f = out
		return nil
	default:
		return fmt.Errorf("field_names must be a string or a list, got %v", node.Tag)
	}
}

// SplitFieldNames splits "a.b, c[0]" into trimmed, non-empty names.
func SplitFieldNames(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
