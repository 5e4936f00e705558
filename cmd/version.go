package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/ai-testing-tool/internal/output"
	"github.com/mj1618/ai-testing-tool/internal/version"
)

// VersionInfo is the output of the version command.
type VersionInfo struct {
	Version   string `yaml:"version"    json:"version"`
	Commit    string `yaml:"commit"     json:"commit"`
	BuildDate string `yaml:"build_date" json:"build_date"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.Print(VersionInfo{
			Version:   version.Version,
			Commit:    version.Commit,
			BuildDate: version.BuildDate,
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
