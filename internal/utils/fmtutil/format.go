// Package fmtutil provides formatting helpers for analysis reports.
// Package fmtutil 提供分析报告使用的格式化工具。
package fmtutil

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FormatStat prints a statistic with 4 significant digits. NaN prints as
// "NaN" so an empty derived series is visible in reports.
// FormatStat 以 4 位有效数字格式化统计值。
func FormatStat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return fmt.Sprintf("%.4g", v)
}

// FormatCount formats a count with thousand separators.
// FormatCount 格式化数量，添加千位分隔符。
func FormatCount(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatTimestampNs renders a nanosecond epoch stamp as UTC wall time.
// FormatTimestampNs 将纳秒时间戳格式化为 UTC 时间。
func FormatTimestampNs(ns int64) string {
	return time.Unix(0, ns).UTC().Format("2006-01-02 15:04:05.000000000")
}

// FormatSpan formats the distance between two nanosecond stamps.
func FormatSpan(startNs, endNs int64) string {
	return FormatDuration(time.Duration(endNs - startNs))
}

// FormatDuration formats a duration for humans.
// FormatDuration 将持续时间格式化为可读格式。
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.String()
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := d.Seconds() - float64(int(d.Minutes())*60)

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%.3gs", seconds))
	}
	return strings.Join(parts, " ")
}
