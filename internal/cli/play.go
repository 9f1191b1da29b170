package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/bananamath/internal/factory"
	"github.com/mcoot/bananamath/internal/logging"
	"github.com/mcoot/bananamath/internal/model"
	"github.com/mcoot/bananamath/internal/services/game"
)

type playOptions struct {
	username string
	password string
	register bool
}

func newPlayCmd() *cobra.Command {
	var opts playOptions
	var storageType, sqlitePath, logLevel string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal without a server",
		Long: `Play in the terminal. Type an answer, or one of:
  hint          reveal a hint for the current puzzle
  skip          give up on the current puzzle
  save [name]   save the session
  load [name]   load a saved session
  stats         show the session
  quit          save and exit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := factory.New(cmd.Context(), factory.Config{
				Logger:      logging.New(os.Stderr, logLevel, ""),
				StorageType: storageType,
				SQLitePath:  sqlitePath,
			})
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			return runPlay(cmd.Context(), app, bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.username, "user", "", "Username (prompted when omitted)")
	cmd.Flags().StringVar(&opts.password, "pass", "", "Password (prompted when omitted)")
	cmd.Flags().BoolVar(&opts.register, "register", false, "Create the account before playing")
	cmd.Flags().StringVar(&storageType, "storage", factory.StorageTypeSQLite, "Storage backend: memory, sqlite")
	cmd.Flags().StringVar(&sqlitePath, "sqlite-path", "bananamath.db", "SQLite database file")
	cmd.Flags().StringVar(&logLevel, "log-level", "ERROR", "Log level")

	return cmd
}

// runPlay authenticates and runs the puzzle loop until quit or end of input
func runPlay(ctx context.Context, app *factory.App, in *bufio.Reader, out io.Writer, opts playOptions) error {
	profile, err := authenticate(ctx, app, in, out, opts)
	if err != nil {
		return err
	}

	st, err := app.Sessions.Get(ctx, profile)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Welcome, %s! Level %d, score %d.\n", profile.Username, st.Level(), st.Score())

	for {
		p, err := st.NewPuzzle(ctx)
		if err != nil {
			return err
		}

		done, err := playPuzzle(ctx, st, p, in, out)
		if err != nil {
			return err
		}
		if done {
			return finish(ctx, st, out)
		}
	}
}

func authenticate(ctx context.Context, app *factory.App, in *bufio.Reader, out io.Writer, opts playOptions) (*model.UserProfile, error) {
	username := opts.username
	if username == "" {
		var err error
		if username, err = readLine(in, "Username: ", out); err != nil {
			return nil, fmt.Errorf("failed to read username: %w", err)
		}
	}
	password := opts.password
	if password == "" {
		var err error
		if password, err = promptPassword(in, out); err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
	}

	if opts.register {
		profile, _, err := app.AuthManager.Register(ctx, username, password)
		return profile, err
	}
	profile, _, err := app.AuthManager.Login(ctx, username, password)
	return profile, err
}

// playPuzzle prompts until p is answered, skipped or the player quits. It
// reports whether the player quit.
func playPuzzle(ctx context.Context, st *game.State, p *model.Puzzle, in *bufio.Reader, out io.Writer) (bool, error) {
	fmt.Fprintf(out, "\n[level %d | score %d | %s | %ds | %d hints]\n",
		st.Level(), st.Score(), p.Difficulty, p.TimeLimit, st.HintsRemaining())

	for {
		line, err := readLine(in, p.Expression+" = ", out)
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		if err != nil {
			return false, err
		}

		cmd, arg, _ := strings.Cut(line, " ")
		switch strings.ToLower(cmd) {
		case "":
			continue
		case "quit", "q", "exit":
			return true, nil
		case "hint", "h":
			hint, err := st.RevealHint()
			if err != nil {
				fmt.Fprintln(out, messageOf(err))
				continue
			}
			fmt.Fprintf(out, "Hint: %s\n", hint)
		case "skip":
			st.Expire()
			fmt.Fprintf(out, "Skipped. The answer was %s.\n", formatAnswer(p.Answer))
			return false, nil
		case "save":
			name, err := st.SaveState(ctx, strings.TrimSpace(arg))
			if err != nil {
				fmt.Fprintln(out, messageOf(err))
				continue
			}
			fmt.Fprintf(out, "Saved as %q.\n", name)
		case "load":
			if err := st.LoadState(ctx, strings.TrimSpace(arg)); err != nil {
				fmt.Fprintln(out, messageOf(err))
				continue
			}
			fmt.Fprintf(out, "Loaded. Level %d, score %d.\n", st.Level(), st.Score())
			return false, nil
		case "stats":
			printStats(out, st)
		default:
			correct, err := st.CheckAnswerText(line)
			switch {
			case correct:
				fmt.Fprintf(out, "Correct! Score %d, streak %d.\n", st.Score(), st.GetState().Game.Streak)
			case errors.Is(err, model.ErrInvalidMove):
				fmt.Fprintf(out, "%s. The answer was %s.\n", wrongReason(err), formatAnswer(p.Answer))
			default:
				return false, err
			}
			return false, nil
		}
	}
}

func finish(ctx context.Context, st *game.State, out io.Writer) error {
	if _, err := st.SaveState(ctx, ""); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nFinal score %d at level %d. Progress saved.\n", st.Score(), st.Level())
	return nil
}

func printStats(out io.Writer, st *game.State) {
	snap := st.GetState()
	s := snap.Statistics
	fmt.Fprintf(out, "Solved %d, wrong %d, hints used %d, %ds played\n",
		s.PuzzlesSolved, s.WrongAnswers, s.HintsUsed, s.TotalTimePlayed)
	if len(snap.Player.HighScores) > 0 {
		fmt.Fprintf(out, "Best score %d\n", snap.Player.HighScores[0])
	}
	if achievements := snap.Player.Achievements.Sorted(); len(achievements) > 0 {
		fmt.Fprintf(out, "Achievements: %s\n", strings.Join(achievements, ", "))
	}
}

func wrongReason(err error) string {
	var me *model.Error
	if errors.As(err, &me) {
		if me.Context["reason"] == "time_limit_exceeded" {
			return "Too slow"
		}
		if me.Message != "" && me.Message != "Incorrect answer" {
			return me.Message
		}
	}
	return "Wrong"
}

func messageOf(err error) string {
	var me *model.Error
	if errors.As(err, &me) && me.Message != "" {
		return me.Message
	}
	return err.Error()
}

func formatAnswer(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
