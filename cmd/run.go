package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mj1618/ai-testing-tool/internal/llm"
	"github.com/mj1618/ai-testing-tool/internal/metrics"
	"github.com/mj1618/ai-testing-tool/internal/observability"
	"github.com/mj1618/ai-testing-tool/internal/output"
	"github.com/mj1618/ai-testing-tool/internal/runner"
)

var runCmd = &cobra.Command{
	Use:   "run <prompt-file> <task-file>",
	Short: "Run test tasks against a device",
	Long: `Run every task of the task file in order. The prompt file is sent to the model
as system instructions. Tasks are a JSON array (or a YAML list for .yaml/.yml)
of {name, details, skip}.

Each task writes its steps to {reports}/{name}/{timestamp}/.

Examples:
  ai-testing-tool run prompt.md tasks.json
  ai-testing-tool run prompt.md tasks.json --appium http://device-farm:4723
  ai-testing-tool run prompt.md tasks.yaml --debug`,
	Args: cobra.ExactArgs(2),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("appium", "http://localhost:4723", "Appium server URL")
	runCmd.Flags().Bool("debug", false, "Read each action from stdin instead of the model")
	runCmd.Flags().String("reports", "./reports", "Folder to store the reports")
	runCmd.Flags().Int("max-steps", 0, "Stop a task after this many steps (0 = unlimited)")
	runCmd.Flags().String("provider", "openai", "Model provider: openai, gemini")
	runCmd.Flags().String("model", "gpt-4-turbo", "Model name")
	runCmd.Flags().Int("grid", 0, "Overlay a coordinate grid with this cell size on screenshots")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	prompt, err := runner.LoadPrompt(args[0])
	if err != nil {
		return err
	}
	tasks, err := runner.LoadTasks(args[1])
	if err != nil {
		return err
	}
	caps, err := capabilities(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	decider, err := llm.NewDecider(ctx, cfg.Model, cfg.Run.Debug, cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	r := runner.New(newFactory(), decider, prompt, *cfg,
		runner.WithCapabilities(caps),
		runner.WithMetrics(metrics.New()),
		runner.WithLogger(observability.GetLogger()),
	)
	reports, runErr := r.Run(ctx, tasks)

	result := output.RunResult{Tasks: make([]output.TaskSummary, 0, len(reports))}
	for _, rep := range reports {
		summary := output.TaskSummary{Name: rep.Name, Status: rep.Status, Steps: rep.Steps, Dir: rep.Dir}
		if rep.Err != nil {
			summary.Error = rep.Err.Error()
		}
		result.Tasks = append(result.Tasks, summary)
	}
	if err := output.Print(result); err != nil {
		return err
	}
	return runErr
}
