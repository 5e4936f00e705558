package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mj1618/ai-testing-tool/internal/config"
	"github.com/mj1618/ai-testing-tool/internal/observability"
	"github.com/mj1618/ai-testing-tool/internal/output"
	"github.com/mj1618/ai-testing-tool/internal/version"
)

var (
	vip       = viper.New()
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ai-testing-tool",
	Short: "Explore and test Android apps with a language model",
	Long: `ai-testing-tool runs exploratory test tasks on an Android device through an
Appium server. Each step captures the screen, asks a language model for the next
action, performs it and records the step under the reports folder.`,
	SilenceUsage: true,
}

func Execute() {
	defer observability.Sync()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// flagKeys maps command flags to configuration keys. Flags only bind when the
// running command defines them.
var flagKeys = map[string]string{
	"appium":    "appium.url",
	"debug":     "run.debug",
	"reports":   "reports.dir",
	"max-steps": "run.max_steps",
	"provider":  "model.provider",
	"model":     "model.name",
	"grid":      "screenshot.grid_size",
	"log-level": "logger.level",
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Indent JSON output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ./ai-testing-tool.yaml if present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")

		if err := bindFlags(vip, cmd.Flags()); err != nil {
			return err
		}
		cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
		cfg, err := config.Load(vip, cfgFile)
		if err != nil {
			return err
		}
		appConfig = cfg
		observability.InitializeLogger(cfg.Logger)
		return nil
	}
}

// bindFlags binds every changed or defined flag listed in flagKeys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if name == "log-level" && !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}
