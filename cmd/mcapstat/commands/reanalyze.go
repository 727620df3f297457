package commands

import (
	"github.com/spf13/cobra"

	"github.com/livp123/mcapstat/internal/analysis"
	"github.com/livp123/mcapstat/internal/app"
)

var reanalyzeType string

var reanalyzeCmd = &cobra.Command{
	Use:   "reanalyze <task.csv>",
	Short: "Analyze a task CSV saved by a previous run",
	// Short: 重新分析之前保存的任务 CSV
	Example: `  mcapstat reanalyze results/20240102_030405/imu_rate.csv --type "timestamp(freq:100)"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := app.Reanalyze(cmd.Context(), args[0], reanalyzeType, cmd.OutOrStdout())
		return err
	},
}

func init() {
	reanalyzeCmd.Flags().StringVarP(&reanalyzeType, "type", "t", analysis.TypeBasicStats,
		`Analysis type: none, basic_stats or "timestamp(freq:<Hz>)"`)
}
