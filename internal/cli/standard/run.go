package standard

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gridpilot/gridpilot/internal/config"
	"github.com/gridpilot/gridpilot/internal/engine"
	"github.com/gridpilot/gridpilot/internal/shared/logging"
)

func newRunCmd() *cobra.Command {
	var (
		goalFlag    string
		startFlag   string
		blockedFlag []string
		runID       string
		model       string
		verbosity   string
		thinking    string
		devMessage  string
	)

	cmd := &cobra.Command{
		Use:   "run <instruction>",
		Short: "Execute a navigation instruction and stream the run",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			apiBase, _ := cmd.Flags().GetString("api")

			goal, err := parseCoord(goalFlag)
			if err != nil {
				return fmt.Errorf("--goal: %w", err)
			}
			blocked, err := parseCoordList(blockedFlag)
			if err != nil {
				return fmt.Errorf("--blocked: %w", err)
			}
			req := engine.Request{
				Instruction:      strings.Join(args, " "),
				Goal:             goal,
				Blocked:          blocked,
				RunID:            runID,
				Model:            firstNonEmpty(model, cfg.Model),
				Verbosity:        firstNonEmpty(verbosity, cfg.Verbosity),
				Thinking:         firstNonEmpty(thinking, cfg.Thinking),
				DeveloperMessage: firstNonEmpty(devMessage, cfg.DeveloperMessage),
			}
			if startFlag != "" {
				start, err := parseCoord(startFlag)
				if err != nil {
					return fmt.Errorf("--start: %w", err)
				}
				req.Start = &start
			}

			eng, err := engine.New(engine.Params{
				BaseURL: apiBase,
				APIKey:  cfg.APIKey,
				Logger:  logging.New("cli"),
			})
			if err != nil {
				return err
			}
			defer eng.Close()

			snap, err := eng.Execute(cmd.Context(), req)
			printSummary(cmd, snap)
			return err
		},
	}

	cmd.Flags().StringVarP(&goalFlag, "goal", "g", "", "goal cell as x,y (required)")
	cmd.Flags().StringVarP(&startFlag, "start", "s", "", "start cell as x,y (default origin)")
	cmd.Flags().StringArrayVarP(&blockedFlag, "blocked", "b", nil, "blocked cell as x,y (repeatable)")
	cmd.Flags().StringVar(&runID, "run-id", "", "run identifier (generated when empty)")
	cmd.Flags().StringVar(&model, "model", "", "generation model override")
	cmd.Flags().StringVar(&verbosity, "verbosity", "", "generation verbosity override")
	cmd.Flags().StringVar(&thinking, "thinking", "", "thinking-effort override")
	cmd.Flags().StringVar(&devMessage, "developer-message", "", "developer message forwarded to the planner")
	_ = cmd.MarkFlagRequired("goal")

	return cmd
}

func printSummary(cmd *cobra.Command, snap engine.Snapshot) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Status: %s\n", snap.Status)
	if snap.Message != "" {
		fmt.Fprintf(out, "Message: %s\n", snap.Message)
	}
	if len(snap.Plan) > 0 {
		fmt.Fprintln(out, "Plan:")
		for i, action := range snap.Plan {
			fmt.Fprintf(out, "  %2d. %s x%d\n", i+1, action.Dir, action.Steps)
		}
	}
	if snap.Notes != "" {
		fmt.Fprintf(out, "Notes: %s\n", snap.Notes)
	}
	if len(snap.Trail) > 0 {
		cells := make([]string, 0, len(snap.Trail))
		for _, cell := range snap.Trail {
			cells = append(cells, fmt.Sprintf("(%d,%d)", cell.X, cell.Y))
		}
		fmt.Fprintf(out, "Trail: %s\n", strings.Join(cells, " -> "))
	}
	if snap.Stats != nil {
		fmt.Fprintf(out, "Stats: success=%t steps=%d attempts=%d duration=%.0fms\n",
			snap.Stats.Success, snap.Stats.StepsExecuted, snap.Stats.Attempts, snap.Stats.DurationMs)
		if snap.Stats.OptimalPathLength != nil {
			fmt.Fprintf(out, "       optimal=%d", *snap.Stats.OptimalPathLength)
			if snap.Stats.Surcout != nil {
				fmt.Fprintf(out, " surcout=%d", *snap.Stats.Surcout)
			}
			fmt.Fprintln(out)
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
