package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"pcodestep/internal/pcodestep/log"
	"pcodestep/internal/pcodestep/styles"
	"pcodestep/internal/stepper"
)

func init() {
	rootCmd.PersistentFlags().StringP("cwd", "c", "", "Current working directory")
	rootCmd.PersistentFlags().String("config", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")
	rootCmd.PersistentFlags().String("time", "", "Starting schedule, <snap>[:<ticks>[.<pticks>]][@<thread>]")
	rootCmd.PersistentFlags().StringP("thread", "t", "", "Thread to step (default: the first thread of the trace)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Render without colors")
	rootCmd.PersistentFlags().Bool("indent", false, "Indent op rows under line labels")
	rootCmd.PersistentFlags().Duration("latency", 0, "Minimum time each background emulation takes")

	rootCmd.Flags().BoolP("help", "h", false, "Help")
	rootCmd.Flags().BoolP("no-tui", "n", false, "Print the frame at --time without TUI")
}

var rootCmd = &cobra.Command{
	Use:   "pcodestep <trace>",
	Short: "Step through the p-code of a recorded trace",
	Long: `Pcodestep shows the p-code of the instruction a thread is executing,
one micro-step at a time, together with the unique variables the
instruction touches and their current values.`,
	Example: `
# Step interactively through the first thread
pcodestep trace.json

# Start two p-code steps into the second instruction of thread main
pcodestep --time 0:1.2 --thread main trace.json

# Print one frame without TUI
pcodestep -n --time 0:0.3 trace.json
  `,
	Args: cobra.ExactArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		log.Setup("", debug)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession(cmd, args[0])
		if err != nil {
			return err
		}
		defer sess.Close()

		coords, err := sess.coordinates(cmd)
		if err != nil {
			return err
		}

		noTUI, _ := cmd.Flags().GetBool("no-tui")
		if !term.IsTerminal(os.Stdout.Fd()) {
			noTUI = true
		}
		if noTUI {
			return runNoTUI(cmd.OutOrStdout(), sess, coords)
		}

		program := tea.NewProgram(
			newModel(sess, coords),
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
		)
		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("TUI error: %v", err)
		}
		return nil
	},
}

// runNoTUI loads coords synchronously and prints the frame.
func runNoTUI(w io.Writer, sess *session, coords stepper.Coordinates) error {
	view := sess.loader.Load(coords)
	return printView(w, sess, view)
}

func printView(w io.Writer, sess *session, view stepper.View) error {
	c := sess.loader.Current()
	header := styles.Header{
		Trace:  sess.trace.Name(),
		Time:   c.Time.String(),
		Thread: c.Thread,
		State:  view.State.String(),
	}
	rows, err := sess.palette.Rows(view.Rows)
	if err != nil {
		return err
	}
	var b strings.Builder
	if sess.palette.NoColor {
		fmt.Fprintf(&b, "%s %s %s [%s]\n", header.Trace, header.Time, orDash(header.Thread), header.State)
	} else {
		fmt.Fprintln(&b, header.Render(80, false))
	}
	fmt.Fprintln(&b, instructionLine(sess, view))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, rows)
	if len(view.Uniques) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, uniquesTable(view.Uniques, sess.palette.NoColor))
	}
	_, err = io.WriteString(w, b.String())
	return err
}

// instructionLine is the instruction label, colored with the assembly lexer
// when an instruction is decoded.
func instructionLine(sess *session, view stepper.View) string {
	if !view.HasInstruction() {
		return view.Instruction
	}
	return sess.palette.Instruction(view.Instruction)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func Execute() {
	// Bypass fang when output is being piped
	if !term.IsTerminal(os.Stdout.Fd()) {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

func ResolveCwd(cmd *cobra.Command) (string, error) {
	cwd, _ := cmd.Flags().GetString("cwd")
	if cwd != "" {
		err := os.Chdir(cwd)
		if err != nil {
			return "", fmt.Errorf("failed to change directory: %v", err)
		}
		return cwd, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %v", err)
	}
	return cwd, nil
}
