package stepper

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"pcodestep/internal/pcode"
	"pcodestep/internal/types"
)

// State is where the loader is in bringing a frame on screen.
type State int

const (
	StateNoCoordinates State = iota
	StateNoThread
	StateNotDecoded
	StateLoading
	StateLoaded
	StateStale
)

func (s State) String() string {
	switch s {
	case StateNoCoordinates:
		return "no-coordinates"
	case StateNoThread:
		return "no-thread"
	case StateNotDecoded:
		return "not-decoded"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateStale:
		return "stale"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// EmulationService provides emulators positioned at a schedule.
// CachedEmulator must not block. Emulate may take a long time and is only
// ever called from a Task.
type EmulationService interface {
	CachedEmulator(trace Trace, time Schedule) (Emulator, bool)
	Emulate(ctx context.Context, trace Trace, time Schedule) (Emulator, error)
}

// Emulator is the machine state at one schedule.
type Emulator interface {
	Thread(path string) (Thread, bool)
}

// Thread is one emulated thread. Instruction and Frame are absent until the
// thread has decoded an instruction.
type Thread interface {
	Instruction() (fmt.Stringer, bool)
	Frame() (*pcode.Frame, bool)
	State() pcode.ExecutionState
}

// NoInstruction is the instruction label shown when none is decoded.
const NoInstruction = "(no instruction)"

// View is what the loader has for the presentation layer.
type View struct {
	State       State
	Rows        []Row
	Next        int
	Uniques     []UniqueEntry
	Instruction string
}

// HasInstruction reports whether Instruction names a decoded instruction.
func (v View) HasInstruction() bool {
	return v.Instruction != NoInstruction
}

// Task is a background emulation for one set of coordinates. Run it off the
// owning goroutine and hand the Completion back to Loader.Resolve there.
type Task struct {
	gen    uint64
	coords Coordinates
	ctx    context.Context
	svc    EmulationService
}

// Generation is the loader generation the task was issued in.
func (t *Task) Generation() uint64 { return t.gen }

// Coordinates are the coordinates the task emulates.
func (t *Task) Coordinates() Coordinates { return t.coords }

// Run performs the emulation. It blocks.
func (t *Task) Run() Completion {
	emu, err := t.svc.Emulate(t.ctx, t.coords.Trace, t.coords.Time)
	return Completion{Generation: t.gen, Coordinates: t.coords, Emulator: emu, Err: err}
}

// Completion is the result of a Task.
type Completion struct {
	Generation  uint64
	Coordinates Coordinates
	Emulator    Emulator
	Err         error
}

// Loader follows the debugger's coordinates and rebuilds the p-code rows and
// unique entries for each distinct (trace, time, thread). It is owned by one
// goroutine; only Task.Run may execute elsewhere.
type Loader struct {
	svc    EmulationService
	logger *log.Logger
	indent bool

	current  Coordinates
	previous Coordinates
	gen      uint64
	cancel   context.CancelFunc
	view     View
	stale    int
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger transitions are reported to.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithIndent indents op rows under line labels.
func WithIndent(indent bool) Option {
	return func(l *Loader) { l.indent = indent }
}

// NewLoader returns a loader at Nowhere. svc may be nil until
// SetEmulationService is called.
func NewLoader(svc EmulationService, opts ...Option) *Loader {
	l := &Loader{
		svc:    svc,
		logger: log.New(io.Discard),
		view:   View{State: StateNoCoordinates, Next: -1, Instruction: NoInstruction},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) Current() Coordinates  { return l.current }
func (l *Loader) Previous() Coordinates { return l.previous }
func (l *Loader) View() View            { return l.view }
func (l *Loader) State() State          { return l.view.State }

// Generation counts distinct coordinate activations.
func (l *Loader) Generation() uint64 { return l.gen }

// StaleCount is the number of completions discarded as superseded.
func (l *Loader) StaleCount() int { return l.stale }

// SetEmulationService replaces the service and reloads the current
// coordinates.
func (l *Loader) SetEmulationService(svc EmulationService) *Task {
	l.svc = svc
	l.gen++
	l.cancelPending()
	return l.load()
}

// Activate moves the loader to c. Coordinates naming the same trace, time
// and thread as the current ones only replace the reference. Otherwise the
// view is rebuilt; the returned task, if any, must be run to finish loading.
func (l *Loader) Activate(c Coordinates) *Task {
	if l.current.Same(c) {
		l.current = c
		return nil
	}
	l.previous = l.current
	l.current = c
	l.gen++
	l.cancelPending()
	l.logger.Debug("coordinates activated", "coords", c, "generation", l.gen)
	return l.load()
}

// Resolve applies a finished task. A completion from an older generation, or
// for coordinates that are no longer current, is dropped and StateStale is
// returned; the view is then re-checked against the emulator cache in case
// the live coordinates became available meanwhile.
func (l *Loader) Resolve(c Completion) State {
	if c.Generation != l.gen || !c.Coordinates.Same(l.current) {
		l.stale++
		l.logger.Debug("discarding stale emulation", "coords", c.Coordinates, "generation", c.Generation, "current", l.gen)
		l.recheckCache()
		return StateStale
	}
	l.cancel = nil
	if c.Err != nil {
		l.logger.Warn("background emulation failed", "coords", c.Coordinates, "err", c.Err)
		l.placeholder(StateNotDecoded, MessageNotDecoded)
		return l.view.State
	}
	l.populateFromEmulator(c.Emulator)
	return l.view.State
}

// Load activates c and, if that needs a background emulation, runs it on the
// calling goroutine. It is for hosts without a UI loop.
func (l *Loader) Load(c Coordinates) View {
	if task := l.Activate(c); task != nil {
		l.Resolve(task.Run())
	}
	return l.view
}

// AssignType sets the data type of the i'th unique entry, resolving it in the
// current trace's catalog.
func (l *Loader) AssignType(i int, candidate types.DataType) error {
	if i < 0 || i >= len(l.view.Uniques) {
		return fmt.Errorf("%w: %d", ErrNoSuchUnique, i)
	}
	if l.current.Trace == nil {
		return ErrNoTrace
	}
	lang := l.current.Trace.Language()
	return l.view.Uniques[i].AssignType(l.current.Trace.Types(), candidate, lang.ByteOrder())
}

func (l *Loader) cancelPending() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *Loader) load() *Task {
	l.view = View{State: StateNoCoordinates, Next: -1, Instruction: NoInstruction}
	c := l.current
	if l.svc == nil || c.Trace == nil {
		return nil
	}
	if c.Thread == "" {
		l.placeholder(StateNoThread, MessageNoThread)
		return nil
	}
	if c.Time.PTickCount() == 0 {
		l.placeholder(StateNotDecoded, MessageNotDecoded)
		return nil
	}
	if emu, ok := l.svc.CachedEmulator(c.Trace, c.Time); ok {
		l.populateFromEmulator(emu)
		return nil
	}
	l.view.State = StateLoading
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.logger.Debug("emulating in background", "coords", c)
	return &Task{gen: l.gen, coords: c, ctx: ctx, svc: l.svc}
}

func (l *Loader) recheckCache() {
	if l.view.State != StateLoading || l.svc == nil {
		return
	}
	if emu, ok := l.svc.CachedEmulator(l.current.Trace, l.current.Time); ok {
		l.cancelPending()
		l.populateFromEmulator(emu)
	}
}

func (l *Loader) placeholder(state State, msg string) {
	l.view.State = state
	l.view.Rows = []Row{PlaceholderRow{Seq: 0, Message: msg}}
	l.view.Next = -1
	l.view.Uniques = nil
}

func (l *Loader) populateFromEmulator(emu Emulator) {
	if emu == nil {
		l.placeholder(StateNotDecoded, MessageNotDecoded)
		return
	}
	thread, ok := emu.Thread(l.current.Thread)
	if !ok {
		// The thread has not been stepped in this schedule.
		l.placeholder(StateNotDecoded, MessageNotDecoded)
		return
	}
	l.view.Instruction = NoInstruction
	if insn, ok := thread.Instruction(); ok {
		l.view.Instruction = insn.String()
	}
	frame, ok := thread.Frame()
	if !ok {
		// The instruction completed; the next one is not decoded yet.
		l.placeholder(StateNotDecoded, MessageNotDecoded)
		return
	}
	lang := l.current.Trace.Language()
	formatted := Format(lang, frame, l.indent)
	l.view.State = StateLoaded
	l.view.Rows = formatted.Rows
	l.view.Next = formatted.Next
	l.view.Uniques = Uniques(frame, thread.State(), lang.ByteOrder())
	l.logger.Debug("frame loaded", "coords", l.current, "rows", len(l.view.Rows), "uniques", len(l.view.Uniques))
}
