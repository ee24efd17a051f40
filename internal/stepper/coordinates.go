package stepper

import (
	"fmt"
	"strconv"
	"strings"

	"pcodestep/internal/pcode"
	"pcodestep/internal/types"
)

// Trace is a recorded or replayed execution the debugger has open.
// Implementations are compared with ==, so they are usually pointers.
type Trace interface {
	Name() string
	Language() *pcode.Language
	Types() *types.Catalog
}

// Schedule is a position in a trace: a snapshot, a number of whole
// instructions stepped from it, and a number of p-code steps after those.
// Thread names the thread the steps apply to.
type Schedule struct {
	Snap   int64
	Ticks  uint64
	PTicks uint64
	Thread string
}

// String renders "<snap>[:<ticks>[.<pticks>]][@<thread>]".
func (s Schedule) String() string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatInt(s.Snap, 10))
	if s.Ticks != 0 || s.PTicks != 0 {
		fmt.Fprintf(&sb, ":%d", s.Ticks)
	}
	if s.PTicks != 0 {
		fmt.Fprintf(&sb, ".%d", s.PTicks)
	}
	if s.Thread != "" {
		sb.WriteString("@")
		sb.WriteString(s.Thread)
	}
	return sb.String()
}

// ParseSchedule parses the form String produces.
func ParseSchedule(text string) (Schedule, error) {
	var s Schedule
	rest := strings.TrimSpace(text)
	if at := strings.IndexByte(rest, '@'); at >= 0 {
		s.Thread = rest[at+1:]
		rest = rest[:at]
	}
	snap, steps, hasSteps := strings.Cut(rest, ":")
	var err error
	if s.Snap, err = strconv.ParseInt(snap, 10, 64); err != nil {
		return Schedule{}, fmt.Errorf("%w: %q: %w", ErrBadSchedule, text, err)
	}
	if !hasSteps {
		return s, nil
	}
	ticks, pticks, hasP := strings.Cut(steps, ".")
	if ticks != "" {
		if s.Ticks, err = strconv.ParseUint(ticks, 10, 64); err != nil {
			return Schedule{}, fmt.Errorf("%w: %q: %w", ErrBadSchedule, text, err)
		}
	}
	if hasP {
		if s.PTicks, err = strconv.ParseUint(pticks, 10, 64); err != nil {
			return Schedule{}, fmt.Errorf("%w: %q: %w", ErrBadSchedule, text, err)
		}
	}
	return s, nil
}

// PTickCount is the number of p-code steps past the last whole instruction.
func (s Schedule) PTickCount() uint64 { return s.PTicks }

// SteppedPcodeForward returns the schedule n p-code steps further on thread.
// Steps already taken on another thread cannot be extended.
func (s Schedule) SteppedPcodeForward(thread string, n uint64) (Schedule, error) {
	if s.Thread != "" && s.Thread != thread && (s.Ticks != 0 || s.PTicks != 0) {
		return s, fmt.Errorf("%w: schedule steps %s, not %s", ErrStepUnavailable, s.Thread, thread)
	}
	s.Thread = thread
	s.PTicks += n
	return s, nil
}

// SteppedPcodeBackward returns the schedule n p-code steps earlier. It fails
// when fewer than n p-code steps have been taken.
func (s Schedule) SteppedPcodeBackward(n uint64) (Schedule, error) {
	if s.PTicks < n {
		return s, fmt.Errorf("%w: only %d p-code steps taken", ErrStepUnavailable, s.PTicks)
	}
	s.PTicks -= n
	return s, nil
}

// Coordinates are what the debugger is looking at.
type Coordinates struct {
	Trace  Trace
	Time   Schedule
	Thread string
}

// Nowhere is the zero Coordinates.
var Nowhere = Coordinates{}

// Same reports whether c and o name the same trace, time and thread.
func (c Coordinates) Same(o Coordinates) bool {
	return c.Trace == o.Trace && c.Time == o.Time && c.Thread == o.Thread
}

// CanStepBackward reports whether a p-code step backward is possible.
func (c Coordinates) CanStepBackward() bool {
	return c.Trace != nil && c.Time.PTickCount() != 0
}

// CanStepForward reports whether a p-code step forward is possible.
func (c Coordinates) CanStepForward() bool {
	return c.Thread != ""
}

// StepForward returns the coordinates one p-code step further on the
// selected thread.
func (c Coordinates) StepForward() (Coordinates, error) {
	if !c.CanStepForward() {
		return c, ErrNoThread
	}
	t, err := c.Time.SteppedPcodeForward(c.Thread, 1)
	if err != nil {
		return c, err
	}
	c.Time = t
	return c, nil
}

// StepBackward returns the coordinates one p-code step earlier.
func (c Coordinates) StepBackward() (Coordinates, error) {
	if c.Trace == nil {
		return c, ErrNoTrace
	}
	t, err := c.Time.SteppedPcodeBackward(1)
	if err != nil {
		return c, err
	}
	c.Time = t
	return c, nil
}

func (c Coordinates) String() string {
	name := "-"
	if c.Trace != nil {
		name = c.Trace.Name()
	}
	thread := c.Thread
	if thread == "" {
		thread = "-"
	}
	return fmt.Sprintf("%s %s %s", name, c.Time, thread)
}
