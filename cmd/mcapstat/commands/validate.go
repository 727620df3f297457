package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/livp123/mcapstat/internal/app"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and compile every task",
	// Short: 检查配置并编译所有任务
	Long: `Load the configuration, compile every task's parse string and analysis
type, and report problems without reading any data.
加载配置并编译每个任务，不读取任何数据。`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		res, err := app.Validate(cmd.Context(), cfg)
		for _, e := range res.Errors {
			fmt.Fprintf(out, "[ERROR] %v\n", e)
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "[WARN]  task %s: %s\n", w.TaskID, w.Message)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "[OK] %d task(s) valid\n", len(res.Processors))
		return nil
	},
}
