package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"pcodestep/internal/config"
	"pcodestep/internal/logging"
	"pcodestep/internal/replay"
	"pcodestep/internal/stepper"
	"pcodestep/internal/types"
	"pcodestep/internal/ui/colorize"
)

// session is everything a command needs to step through one trace.
type session struct {
	cfg     config.Config
	palette colorize.Palette
	logger  *logging.LoggerCloser
	trace   *replay.Trace
	svc     *replay.Service
	loader  *stepper.Loader
}

// newSession loads the config and the trace named by path and sets up the
// loader. Colors are dropped when stdout is not a terminal.
func newSession(cmd *cobra.Command, path string) (*session, error) {
	if _, err := ResolveCwd(cmd); err != nil {
		return nil, err
	}
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor || !term.IsTerminal(os.Stdout.Fd()) {
		cfg.NoColor = true
	}
	if indent, _ := cmd.Flags().GetBool("indent"); indent {
		cfg.Indent = true
	}
	palette, err := cfg.Palette()
	if err != nil {
		return nil, fmt.Errorf("invalid colors: %w", err)
	}

	logger := logging.NewLogger()
	if cfg.Debug {
		logger.SetLevel(logging.ParseLevel("debug"))
	}

	trace, err := replay.Open(path)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to load trace: %w", err)
	}
	latency, _ := cmd.Flags().GetDuration("latency")
	svc := replay.NewService(
		replay.WithLogger(logger.WithPrefix("replay")),
		replay.WithLatency(latency),
	)
	loader := stepper.NewLoader(svc,
		stepper.WithLogger(logger.WithPrefix("stepper")),
		stepper.WithIndent(cfg.Indent),
	)
	logger.Debug("session ready", "trace", trace.Name(), "threads", trace.Threads(), "latency", latency)

	return &session{
		cfg:     cfg,
		palette: palette,
		logger:  logger,
		trace:   trace,
		svc:     svc,
		loader:  loader,
	}, nil
}

func (s *session) Close() error {
	return s.logger.Close()
}

// coordinates builds the starting coordinates from --time and --thread. The
// thread defaults to the schedule's, then to the trace's first thread.
func (s *session) coordinates(cmd *cobra.Command) (stepper.Coordinates, error) {
	timeText, _ := cmd.Flags().GetString("time")
	thread, _ := cmd.Flags().GetString("thread")
	at := stepper.Schedule{Snap: s.trace.Snap()}
	if timeText != "" {
		var err error
		if at, err = stepper.ParseSchedule(timeText); err != nil {
			return stepper.Nowhere, err
		}
	}
	if thread == "" {
		thread = at.Thread
	}
	if thread == "" {
		if threads := s.trace.Threads(); len(threads) > 0 {
			thread = threads[0]
		}
	}
	if at.Thread == "" && (at.Ticks != 0 || at.PTicks != 0) {
		at.Thread = thread
	}
	return stepper.Coordinates{Trace: s.trace, Time: at, Thread: thread}, nil
}

// assignTypes applies "<index>=<type>" assignments to the loaded uniques.
func (s *session) assignTypes(specs []string) error {
	for _, spec := range specs {
		idx, name, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("type assignment %q is not <index>=<type>", spec)
		}
		i, err := strconv.Atoi(strings.TrimSpace(idx))
		if err != nil {
			return fmt.Errorf("type assignment %q: %w", spec, err)
		}
		dt, err := types.Parse(name)
		if err != nil {
			return err
		}
		if err := s.loader.AssignType(i, dt); err != nil {
			return err
		}
	}
	return nil
}

// nextType returns the type after current among the builtins of the given
// size, or nil after the last one.
func nextType(current types.DataType, size int) types.DataType {
	var candidates []types.DataType
	for _, dt := range types.Builtins() {
		if dt.Length() == size {
			candidates = append(candidates, dt)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	if current == nil {
		return candidates[0]
	}
	for i, dt := range candidates {
		if dt.Name() == current.Name() {
			if i+1 < len(candidates) {
				return candidates[i+1]
			}
			return nil
		}
	}
	return candidates[0]
}
