package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/bananamath/internal/api/request"
	"github.com/mcoot/bananamath/internal/api/response"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands for the logged-in player",
	}

	cmd.AddCommand(newGamePuzzleCmd())
	cmd.AddCommand(newGameAnswerCmd())
	cmd.AddCommand(newGameHintCmd())
	cmd.AddCommand(newGameStateCmd())
	cmd.AddCommand(newGameSettingsCmd())
	cmd.AddCommand(newGameSaveCmd())
	cmd.AddCommand(newGameLoadCmd())
	cmd.AddCommand(newGameSavesCmd())
	cmd.AddCommand(newGameResetCmd())
	cmd.AddCommand(newGameHighScoresCmd())

	return cmd
}

func newGamePuzzleCmd() *cobra.Command {
	var current bool

	cmd := &cobra.Command{
		Use:   "puzzle",
		Short: "Start a new puzzle (or show the active one with --current)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Puzzle
			var err error
			if current {
				err = client.Get(cmd.Context(), "/api/v1/game/puzzle", &result)
			} else {
				err = client.Post(cmd.Context(), "/api/v1/game/puzzle", nil, &result)
			}
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&current, "current", false, "Show the active puzzle instead of starting one")

	return cmd
}

func newGameAnswerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "answer <value>",
		Short: "Answer the active puzzle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Answer

			req := request.AnswerRequest{Answer: args[0]}
			if err := client.Post(cmd.Context(), "/api/v1/game/answer", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameHintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hint",
		Short: "Spend a hint on the active puzzle",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Hint

			if err := client.Post(cmd.Context(), "/api/v1/game/hint", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the play session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.State

			if err := client.Get(cmd.Context(), "/api/v1/game/state", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameSettingsCmd() *cobra.Command {
	var sound, music, scaling string

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Update gameplay settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req request.SettingsRequest
			for _, f := range []struct {
				name  string
				value string
				dst   **bool
			}{
				{"sound", sound, &req.SoundEnabled},
				{"music", music, &req.MusicEnabled},
				{"scaling", scaling, &req.DifficultyScaling},
			} {
				if f.value == "" {
					continue
				}
				b, err := strconv.ParseBool(f.value)
				if err != nil {
					return fmt.Errorf("--%s must be true or false", f.name)
				}
				*f.dst = &b
			}

			var result response.State
			if err := client.Patch(cmd.Context(), "/api/v1/game/settings", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&sound, "sound", "", "Enable sound (true/false)")
	cmd.Flags().StringVar(&music, "music", "", "Enable music (true/false)")
	cmd.Flags().StringVar(&scaling, "scaling", "", "Enable difficulty scaling (true/false)")

	return cmd
}

func saveName(args []string) request.SaveRequest {
	if len(args) == 0 {
		return request.SaveRequest{}
	}
	return request.SaveRequest{Name: args[0]}
}

func newGameSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save [name]",
		Short: "Save the session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Save

			if err := client.Post(cmd.Context(), "/api/v1/game/save", saveName(args), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load [name]",
		Short: "Load a saved session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.State

			if err := client.Post(cmd.Context(), "/api/v1/game/load", saveName(args), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameSavesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "saves",
		Short: "List saved sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Saves

			if err := client.Get(cmd.Context(), "/api/v1/game/saves", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset score, statistics and progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.State

			if err := client.Post(cmd.Context(), "/api/v1/game/reset", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameHighScoresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "high-scores",
		Short: "Show the high-score history",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.HighScores

			if err := client.Get(cmd.Context(), "/api/v1/game/high-scores", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
