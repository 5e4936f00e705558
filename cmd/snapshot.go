package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mj1618/ai-testing-tool/internal/model"
	"github.com/mj1618/ai-testing-tool/internal/output"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print the current screen as semantic YAML",
	Long: `Read the UI hierarchy from the device (or from a saved page source with
--input) and print the normalized form the model sees.

Examples:
  ai-testing-tool snapshot
  ai-testing-tool snapshot --flat
  ai-testing-tool snapshot --input page.xml --xml filtered.xml`,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().String("appium", "http://localhost:4723", "Appium server URL")
	snapshotCmd.Flags().String("input", "", "Normalize a saved page source instead of reading the device (- for stdin)")
	snapshotCmd.Flags().Bool("flat", false, "Print clickable and scrollable nodes as a flat list")
	snapshotCmd.Flags().String("xml", "", "Also write the filtered hierarchy to this file")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	flat, _ := cmd.Flags().GetBool("flat")
	xmlPath, _ := cmd.Flags().GetString("xml")

	var source string
	if input != "" {
		data, err := readInput(input)
		if err != nil {
			return err
		}
		source = string(data)
	} else {
		sess, err := openSession(cmd.Context(), appConfig)
		if err != nil {
			return err
		}
		defer sess.Quit()
		source, err = sess.PageSource()
		if err != nil {
			return fmt.Errorf("read page source: %w", err)
		}
	}

	snap, err := model.Normalize(source)
	if err != nil {
		return err
	}

	result := output.SnapshotResult{TS: nowMillis()}
	if flat {
		result.Nodes = model.Interactive(model.FlattenNodes(snap.Root))
	} else {
		result.Semantic = snap.SemanticYAML
	}
	if xmlPath != "" {
		if err := os.WriteFile(xmlPath, []byte(snap.FilteredXML), 0644); err != nil {
			return err
		}
		result.XMLPath = xmlPath
	}
	return output.Print(result)
}
