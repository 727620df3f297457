package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/livp123/mcapstat/internal/app"
	"github.com/livp123/mcapstat/internal/utils/logger"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <source>",
	Short: "Run every configured task over a file, directory or glob",
	// Short: 对文件、目录或通配符匹配的数据执行所有任务
	Long: `Run every configured task over the decoded recordings at <source>.
<source> is a single .jsonl file, a directory (filtered by file_pattern)
or a glob such as "captures/**/*.jsonl". Results are written to
<output_dir>/<YYYYmmdd_HHMMSS>/.`,
	Example: `  mcapstat analyze -c config.yaml captures/
  mcapstat analyze -c config.yaml "captures/**/run*.jsonl" --workers 4`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		summary, err := app.Analyze(ctx, cfg, args[0], app.Options{Stdout: cmd.OutOrStdout()})
		if err != nil {
			return err
		}
		logger.Get(ctx).Debugf("Outputs: %v", summary.Outputs)
		fmt.Fprintf(cmd.OutOrStdout(), "Results saved to %s\n", summary.RunDir)
		return nil
	},
}
