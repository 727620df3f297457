package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/livp123/mcapstat/internal/config"
	"github.com/livp123/mcapstat/internal/runtime"
	"github.com/livp123/mcapstat/internal/utils/logger"
)

var RootCmd = &cobra.Command{
	Use:   "mcapstat",
	Short: "Field extraction and timing analysis for robotics logs",
	// Short: 机器人日志的字段提取与时序分析工具
	Long: `mcapstat extracts scalar values from decoded robotics log recordings,
combines them with small arithmetic expressions and reports summary and
timing statistics for every configured task.
mcapstat 从解码后的机器人日志中提取字段，通过算术表达式组合，
并输出每个任务的统计与时序分析结果。`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Load configuration to get logging settings
		// 加载配置以获取日志设置
		cfg, err := config.Load(runtime.ResolveConfigPath())
		if err != nil {
			// If config fails to load, log to the console only
			// 如果加载配置失败，仅输出到控制台
			cfg = config.Default()
		}
		runtime.Apply(cfg)
		logger.Init(cfg.Logging)

		// Inject logger into context
		// 将 Logger 注入 Context
		ctx := logger.WithContext(cmd.Context(), logger.Get(nil))
		cmd.SetContext(ctx)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	// Config file path
	// 配置文件路径
	RootCmd.PersistentFlags().StringVarP(&runtime.ConfigPath, "config", "c", "", fmt.Sprintf("Path to configuration file (default: %s)", config.DefaultConfigPath))

	// Overrides for config values
	// 覆盖配置项
	RootCmd.PersistentFlags().StringVar(&runtime.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	RootCmd.PersistentFlags().StringVarP(&runtime.OutputDir, "output-dir", "o", "", "Base directory for run results (overrides output_dir)")
	RootCmd.PersistentFlags().IntVarP(&runtime.Workers, "workers", "w", 0, "Number of files scanned in parallel (overrides workers)")

	RootCmd.AddCommand(analyzeCmd)
	RootCmd.AddCommand(reanalyzeCmd)
	RootCmd.AddCommand(validateCmd)
	RootCmd.AddCommand(versionCmd)
	RootCmd.AddCommand(completionCmd)

	RootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig reads the configuration named by --config and applies the
// command line overrides.
// loadConfig 读取 --config 指定的配置并应用命令行覆盖项。
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(runtime.ResolveConfigPath())
	if err != nil {
		return nil, err
	}
	runtime.Apply(cfg)
	return cfg, nil
}

// completionCmd generates completion scripts without powershell.
// completionCmd 生成不含 powershell 的补全脚本。
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish]",
	Short: "Generate shell autocompletion script",
	Long: `Generate shell autocompletion script for mcapstat.
生成 mcapstat 的 shell 自动补全脚本。

Examples:
  mcapstat completion bash > /etc/bash_completion.d/mcapstat
  mcapstat completion zsh  > "${fpath[1]}/_mcapstat"
  mcapstat completion fish > ~/.config/fish/completions/mcapstat.fish`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"bash", "zsh", "fish"},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return RootCmd.GenBashCompletionV2(out, true)
		case "zsh":
			return RootCmd.GenZshCompletion(out)
		case "fish":
			return RootCmd.GenFishCompletion(out, true)
		default:
			return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish)", args[0])
		}
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
