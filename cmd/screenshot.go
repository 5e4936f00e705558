package cmd

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mj1618/ai-testing-tool/internal/imaging"
	"github.com/mj1618/ai-testing-tool/internal/output"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture a screenshot prepared for the model",
	Long: `Capture the device screen (or read a saved PNG/JPEG with --input), flatten it
onto white, resize it within the configured bounds and encode it as JPEG.

Examples:
  ai-testing-tool screenshot --output screen.jpg
  ai-testing-tool screenshot --grid 100 --output grid.jpg
  ai-testing-tool screenshot --input step_3.png > screen.b64`,
	RunE: runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	screenshotCmd.Flags().String("appium", "http://localhost:4723", "Appium server URL")
	screenshotCmd.Flags().String("input", "", "Prepare a saved image instead of capturing the device (- for stdin)")
	screenshotCmd.Flags().String("output", "", "Output file path (default: stdout as base64)")
	screenshotCmd.Flags().Int("grid", 0, "Overlay a labelled coordinate grid with this cell size")
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	outPath, _ := cmd.Flags().GetString("output")

	var raw []byte
	if input != "" {
		data, err := readInput(input)
		if err != nil {
			return err
		}
		raw = data
	} else {
		sess, err := openSession(cmd.Context(), appConfig)
		if err != nil {
			return err
		}
		defer sess.Quit()
		raw, err = sess.Screenshot()
		if err != nil {
			return fmt.Errorf("take screenshot: %w", err)
		}
	}

	prepared, err := imaging.Prepare(raw, imagingOptions(appConfig))
	if err != nil {
		return err
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, prepared.JPEG, 0644); err != nil {
			return err
		}
		return output.Print(output.ScreenshotResult{
			Path:   outPath,
			Width:  prepared.Width,
			Height: prepared.Height,
			Bytes:  len(prepared.JPEG),
		})
	}

	// Default: write to stdout as base64 for easy agent consumption
	encoder := base64.NewEncoder(base64.StdEncoding, cmd.OutOrStdout())
	if _, err := encoder.Write(prepared.JPEG); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
