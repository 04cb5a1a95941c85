package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsphweid/harmondrill/exercise"
	"github.com/jsphweid/harmondrill/model"
	"github.com/jsphweid/harmondrill/playback"
)

func init() {
	rootCmd.AddCommand(quizCmd)
}

const quizHelp = `Type the numerals you hear, e.g. "I vi IV V". When the first chord
is given as I you may type the whole progression or only the rest. Commands:
  r      replay the progression
  e <n>  replace answer slot n (1-based) with the next numeral
  c      clear the answer
  n      skip to the next exercise
  q      quit`

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Runs an interactive ear training quiz",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		engine := newEngine(cfg)
		defer engine.Close()

		q := &quiz{
			engine:  engine,
			session: exercise.NewSession(cfg.Exercise, nil, engine),
			opts:    cfg.PlaybackOptions(),
			out:     cmd.OutOrStdout(),
		}
		fmt.Fprintln(q.out, quizHelp)
		return q.run(ctx, cmd.InOrStdin())
	},
}

type quiz struct {
	engine  *playback.Engine
	session *exercise.Session
	opts    playback.Options
	out     io.Writer
}

func (q *quiz) run(ctx context.Context, in io.Reader) error {
	if err := q.next(ctx); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(q.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "q":
			return nil
		case "n":
			err = q.next(ctx)
		case "r":
			err = q.play(ctx)
		case "c":
			err = q.session.Clear()
		case "e":
			err = q.edit(fields[1:])
		default:
			err = q.answer(ctx, fields)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(q.out, "error: %v\n", err)
		}
		q.printAnswer()
	}
}

func (q *quiz) next(ctx context.Context) error {
	ex, err := q.session.Next()
	if err != nil {
		return err
	}
	fmt.Fprintf(q.out, "\nExercise of %d chords\n", len(ex.Progression))
	if q.session.Settings().StartOnRoot {
		fmt.Fprintln(q.out, "the first chord is I")
	}
	return q.play(ctx)
}

func (q *quiz) play(ctx context.Context) error {
	ex, ok := q.session.Exercise()
	if !ok {
		return exercise.ErrNoExercise
	}

	opts := q.opts
	opts.UseSevenths = ex.UseSevenths
	token := q.session.PlaybackStarted()
	defer q.session.PlaybackFinished(token)

	_, err := playAndWait(ctx, q.engine, ex.Progression, ex.Key, opts)
	return err
}

func (q *quiz) edit(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: e <slot>")
	}
	slot, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("slot must be a number: %w", err)
	}
	return q.session.Edit(slot - 1)
}

func (q *quiz) answer(ctx context.Context, symbols []string) error {
	symbols = skipGivenRoot(q.session.Snapshot(), q.session.Settings().StartOnRoot, symbols)
	for _, symbol := range symbols {
		feedback, err := q.session.Select(symbol)
		if err != nil {
			return err
		}
		if feedback != nil {
			q.reveal(feedback)
			return q.next(ctx)
		}
	}
	return nil
}

// skipGivenRoot drops the leading symbol of a whole typed progression
// when the only answer so far is the pre-filled first chord, so the rest
// lands in the right slots.
func skipGivenRoot(snap exercise.Snapshot, startOnRoot bool, symbols []string) []string {
	if !startOnRoot || len(snap.Answer) != 1 || snap.Editing >= 0 {
		return symbols
	}
	if len(symbols) != snap.Length || symbols[0] != snap.Answer[0] {
		return symbols
	}
	return symbols[1:]
}

func (q *quiz) reveal(feedback []model.Feedback) {
	ex, _ := q.session.Exercise()
	marks := make([]string, len(feedback))
	for i, f := range feedback {
		marks[i] = fmt.Sprintf("%v:%v", ex.Progression[i], f)
	}
	score := q.session.Score()
	fmt.Fprintf(q.out, "%v in %v\n", strings.Join(marks, " "), ex.Key)
	fmt.Fprintf(q.out, "score %d/%d, streak %d\n", score.Correct, score.Total, score.Streak)
}

func (q *quiz) printAnswer() {
	snap := q.session.Snapshot()
	if snap.State == exercise.Revealed.String() {
		return
	}
	slots := make([]string, snap.Length)
	for i := range slots {
		switch {
		case i < len(snap.Answer) && i == snap.Editing:
			slots[i] = "[" + snap.Answer[i] + "]"
		case i < len(snap.Answer):
			slots[i] = snap.Answer[i]
		default:
			slots[i] = "_"
		}
	}
	fmt.Fprintln(q.out, strings.Join(slots, " "))
}
