package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nxadm/tail"
	"github.com/spf13/cobra"

	"pcodestep/internal/stepper"
)

var errEmptyLine = errors.New("empty coordinates line")

// parseCoordLine parses "<schedule> [thread]". The thread defaults to the
// schedule's.
func parseCoordLine(line string) (stepper.Schedule, string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return stepper.Schedule{}, "", errEmptyLine
	}
	if len(fields) > 2 {
		return stepper.Schedule{}, "", fmt.Errorf("coordinates line %q has %d fields", line, len(fields))
	}
	at, err := stepper.ParseSchedule(fields[0])
	if err != nil {
		return stepper.Schedule{}, "", err
	}
	thread := at.Thread
	if len(fields) == 2 {
		thread = fields[1]
	}
	return at, thread, nil
}

var followCmd = &cobra.Command{
	Use:   "follow <trace> <coordinates-file>",
	Short: "Render a frame for every coordinates line appended to a file",
	Long: `Follow tails a file a debugger writes its coordinates to, one
"<schedule> [thread]" per line, and renders the p-code frame for each.
Blank lines and lines starting with # are skipped.`,
	Example: `
# Follow the debugger
pcodestep follow trace.json /tmp/coords

# Render every line already in the file and exit
pcodestep follow --once trace.json coords.txt
  `,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession(cmd, args[0])
		if err != nil {
			return err
		}
		defer sess.Close()

		once, _ := cmd.Flags().GetBool("once")
		t, err := tail.TailFile(args[1], tail.Config{
			Follow:    !once,
			ReOpen:    !once,
			MustExist: once,
			Logger:    tail.DiscardingLogger,
		})
		if err != nil {
			return fmt.Errorf("failed to follow %s: %w", args[1], err)
		}
		defer t.Cleanup()
		defer t.Stop()

		ctx := cmd.Context()
		for {
			select {
			case <-ctx.Done():
				return nil
			case line, ok := <-t.Lines:
				if !ok {
					return nil
				}
				if line.Err != nil {
					return line.Err
				}
				if err := followLine(cmd.OutOrStdout(), sess, line.Text); err != nil {
					return err
				}
			}
		}
	},
}

// followLine renders the frame for one coordinates line. Bad lines are
// reported in the output and do not stop following.
func followLine(w io.Writer, sess *session, text string) error {
	text = strings.TrimSpace(text)
	if text == "" || strings.HasPrefix(text, "#") {
		return nil
	}
	at, thread, err := parseCoordLine(text)
	if err != nil {
		sess.logger.Warn("bad coordinates line", "line", text, "err", err)
		_, err = fmt.Fprintf(w, "! %v\n", err)
		return err
	}
	if thread == "" {
		if threads := sess.trace.Threads(); len(threads) > 0 {
			thread = threads[0]
		}
	}
	if at.Thread == "" && (at.Ticks != 0 || at.PTicks != 0) {
		at.Thread = thread
	}
	view := sess.loader.Load(stepper.Coordinates{Trace: sess.trace, Time: at, Thread: thread})
	if _, err := fmt.Fprintf(w, "--- %s\n", sess.loader.Current()); err != nil {
		return err
	}
	return printView(w, sess, view)
}

func init() {
	followCmd.Flags().Bool("once", false, "Read the file to its end and exit")
	rootCmd.AddCommand(followCmd)
}
