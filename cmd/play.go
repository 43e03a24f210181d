package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/robalobadob/wordchain/internal/game"
)

var playerName string

var (
	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	opponentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	scoreStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game in the terminal",
	Long: `Play a word chain against the computer in the terminal.

Answer within the time limit (TIME_LIMIT, default 10s). A late answer, an
empty input stream or Ctrl-D ends the game as a timeout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		be, err := openBackend(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = be.close() }()

		p := &player{
			engine: be.engine,
			in:     bufio.NewScanner(cmd.InOrStdin()),
			out:    cmd.OutOrStdout(),
			limit:  cfg.TimeLimit,
			now:    time.Now,
		}
		return p.run(cmd.Context(), playerName)
	},
}

func init() {
	playCmd.Flags().StringVarP(&playerName, "name", "n", "", "Player name (default Guest)")
	rootCmd.AddCommand(playCmd)
}

// player drives one terminal game through the engine's session operations.
type player struct {
	engine *game.Engine
	in     *bufio.Scanner
	out    io.Writer
	limit  time.Duration
	now    func() time.Time
}

func (p *player) run(ctx context.Context, name string) error {
	snap, err := p.engine.CreateSession(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "%s\n", promptStyle.Render(fmt.Sprintf("Welcome, %s! Any word to start.", snap.PlayerName)))
	fmt.Fprintln(p.out, hintStyle.Render(fmt.Sprintf("You have %s per answer.", p.limit)))

	for !snap.Ended {
		prompt := "> "
		if snap.NextLetter != "" {
			prompt = fmt.Sprintf("[%s] > ", snap.NextLetter)
		}
		fmt.Fprint(p.out, promptStyle.Render(prompt))

		asked := p.now()
		word, ok := p.read()
		if !ok || p.now().Sub(asked) > p.limit {
			if ok {
				fmt.Fprintln(p.out, errorStyle.Render("Too slow!"))
			}
			out, err := p.engine.SignalTimeout(ctx, snap.SessionID)
			if err != nil {
				return err
			}
			p.summary(out.Summary)
			return nil
		}

		out, err := p.engine.SubmitWord(ctx, snap.SessionID, word)
		var ge *game.Error
		if errors.As(err, &ge) && ge.Kind.Class() == game.ClassValidation {
			fmt.Fprintln(p.out, errorStyle.Render(ge.Message))
			continue
		}
		if err != nil {
			return err
		}
		snap = out.Snapshot
		if out.OpponentReply != "" {
			fmt.Fprintf(p.out, "%s %s\n", hintStyle.Render("computer:"), opponentStyle.Render(out.OpponentReply))
		}
		if out.Surrendered {
			fmt.Fprintln(p.out, opponentStyle.Render(out.Message))
		}
		if out.Ended {
			p.summary(out.Summary)
		}
	}
	return nil
}

func (p *player) read() (string, bool) {
	if !p.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

func (p *player) summary(s *game.Summary) {
	if s == nil {
		return
	}
	fmt.Fprintln(p.out, scoreStyle.Render(fmt.Sprintf("Game over (%s)", s.Reason)))
	fmt.Fprintf(p.out, "score %d  turns %d  time %ds  bonus x%.2f\n", s.Score, s.TurnCount, s.DurationSeconds, s.TimeBonus)
}
