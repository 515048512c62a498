package standard

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gridpilot/gridpilot/internal/cli/tui"
	"github.com/gridpilot/gridpilot/internal/config"
	"github.com/gridpilot/gridpilot/internal/engine"
	"github.com/gridpilot/gridpilot/internal/shared/logging"
)

func newTUICmd() *cobra.Command {
	var (
		goalFlag    string
		blockedFlag []string
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Launch the full-screen run dashboard",
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

			eng, err := engine.New(engine.Params{
				BaseURL: apiBase,
				APIKey:  cfg.APIKey,
				Logger:  logging.New("tui"),
			})
			if err != nil {
				return err
			}
			defer eng.Close()

			return tui.Run(eng, goal, blocked)
		},
	}

	cmd.Flags().StringVarP(&goalFlag, "goal", "g", "9,9", "goal cell as x,y")
	cmd.Flags().StringArrayVarP(&blockedFlag, "blocked", "b", nil, "blocked cell as x,y (repeatable)")

	return cmd
}
