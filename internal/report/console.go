package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/livp123/mcapstat/internal/analysis"
	"github.com/livp123/mcapstat/internal/model"
	"github.com/livp123/mcapstat/internal/utils/fmtutil"
)

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorWarning = lipgloss.Color("#F59E0B")
	colorMuted   = lipgloss.Color("#6B7280")
	colorBorder  = lipgloss.Color("#374151")
)

// consoleStyles are bound to the output's renderer so that piping to a
// file drops the color codes.
type consoleStyles struct {
	title   lipgloss.Style
	task    lipgloss.Style
	label   lipgloss.Style
	warning lipgloss.Style
	muted   lipgloss.Style
	box     lipgloss.Style
}

func newConsoleStyles(w io.Writer) consoleStyles {
	r := lipgloss.NewRenderer(w)
	return consoleStyles{
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F9FAFB")).
			Background(colorPrimary).
			Padding(0, 1),
		task:    r.NewStyle().Bold(true).Foreground(colorPrimary),
		label:   r.NewStyle().Width(22),
		warning: r.NewStyle().Foreground(colorWarning),
		muted:   r.NewStyle().Foreground(colorMuted),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1),
	}
}

// Console prints a short summary of every task.
// Console 在控制台输出每个任务的摘要。
func (r *Report) Console(w io.Writer) error {
	st := newConsoleStyles(w)

	var blocks []string
	blocks = append(blocks, st.title.Render("MCAP Analysis Report"), st.muted.Render("run "+r.RunID))

	for _, res := range r.Results {
		lines := []string{
			st.task.Render(fmt.Sprintf("%s (%s)", res.TaskID, res.TopicName)),
			st.label.Render("Rows") + fmtutil.FormatCount(res.RowCount),
			st.label.Render("Span") + fmtutil.FormatSpan(res.StartTimeNs, res.EndTimeNs),
		}
		lines = append(lines, summaryLines(st, res)...)
		blocks = append(blocks, st.box.Render(strings.Join(lines, "\n")))
	}

	for _, sk := range r.Skipped {
		blocks = append(blocks, st.warning.Render(fmt.Sprintf("! %s skipped: %s", sk.TaskID, sk.Reason)))
	}

	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, blocks...))
	return err
}

func summaryLines(st consoleStyles, res model.AnalysisResult) []string {
	s := res.Summary
	switch {
	case res.AnalysisType == analysis.TypeNone:
		return []string{st.muted.Render("(no analysis for type 'none')")}
	case s.Empty():
		return []string{st.warning.Render("no analysis results available")}
	case s.Timestamp != nil:
		ts := s.Timestamp
		return []string{
			st.label.Render("Specified frequency") + fmtutil.FormatStat(ts.SpecifiedFrequencyHz) + " Hz",
			st.label.Render("Period [s]") + statsLine(ts.PeriodS),
			st.label.Render("Frequency [Hz]") + statsLine(ts.FrequencyHz),
			st.label.Render("Jitter/drift [s]") + statsLine(ts.JitterDriftS),
		}
	case s.BasicStats != nil:
		return []string{st.label.Render("Basic statistics") + statsLine(*s.BasicStats) + fmt.Sprintf(" count=%d", s.BasicStats.Count)}
	}
	return nil
}

func statsLine(s model.Stats) string {
	return fmt.Sprintf("mean=%s std=%s max=%s min=%s",
		fmtutil.FormatStat(s.Mean), fmtutil.FormatStat(s.Std), fmtutil.FormatStat(s.Max), fmtutil.FormatStat(s.Min))
}
