package stepper

import (
	"context"
	"fmt"
	"sync"

	"pcodestep/internal/pcode"
	"pcodestep/internal/types"
)

type testTrace struct {
	name    string
	lang    *pcode.Language
	catalog *types.Catalog
}

func newTestTrace(name string) *testTrace {
	lang := pcode.NewLanguage("x86:LE:64:default", false)
	lang.AddRegister("RAX", 0x0, 8)
	lang.AddRegister("RSP", 0x20, 8)
	lang.Userops[0] = "syscall"
	return &testTrace{name: name, lang: lang, catalog: types.NewCatalog()}
}

func (t *testTrace) Name() string              { return t.name }
func (t *testTrace) Language() *pcode.Language { return t.lang }
func (t *testTrace) Types() *types.Catalog     { return t.catalog }

type testInstruction string

func (i testInstruction) String() string { return string(i) }

type testThread struct {
	insn  string
	frame *pcode.Frame
	state *pcode.ByteState
}

func (t *testThread) Instruction() (fmt.Stringer, bool) {
	if t.insn == "" {
		return nil, false
	}
	return testInstruction(t.insn), true
}

func (t *testThread) Frame() (*pcode.Frame, bool) {
	return t.frame, t.frame != nil
}

func (t *testThread) State() pcode.ExecutionState { return t.state }

type testEmulator struct {
	threads map[string]*testThread
}

func (e *testEmulator) Thread(path string) (Thread, bool) {
	t, ok := e.threads[path]
	if !ok {
		return nil, false
	}
	return t, true
}

type cacheKey struct {
	trace Trace
	time  Schedule
}

// testService serves emulators from a cache. Emulate waits until the test
// releases the schedule, then caches and returns the emulator build makes.
type testService struct {
	mu       sync.Mutex
	cache    map[cacheKey]Emulator
	build    func(Trace, Schedule) Emulator
	gates    map[Schedule]chan struct{}
	emulated []Schedule
	err      error
}

func newTestService(build func(Trace, Schedule) Emulator) *testService {
	return &testService{
		cache: make(map[cacheKey]Emulator),
		build: build,
		gates: make(map[Schedule]chan struct{}),
	}
}

func (s *testService) CachedEmulator(trace Trace, time Schedule) (Emulator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	emu, ok := s.cache[cacheKey{trace, time}]
	return emu, ok
}

func (s *testService) gate(time Schedule) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gates[time]
	if !ok {
		g = make(chan struct{})
		s.gates[time] = g
	}
	return g
}

func (s *testService) release(time Schedule) {
	close(s.gate(time))
}

func (s *testService) Emulate(ctx context.Context, trace Trace, time Schedule) (Emulator, error) {
	select {
	case <-s.gate(time):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emulated = append(s.emulated, time)
	if s.err != nil {
		return nil, s.err
	}
	emu := s.build(trace, time)
	s.cache[cacheKey{trace, time}] = emu
	return emu, nil
}

func (s *testService) put(trace Trace, time Schedule, emu Emulator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[cacheKey{trace, time}] = emu
}

func ptr(v pcode.Varnode) *pcode.Varnode { return &v }

// scenarioFrame is three ops: write $U0:4, read $U0:4 into RAX, branch out.
func scenarioFrame(index, branched int) *pcode.Frame {
	code := []pcode.Op{
		{Opcode: pcode.COPY, Output: ptr(pcode.Unique(0x0, 4)), Inputs: []pcode.Varnode{pcode.Const(0x2a, 4)}, Seq: pcode.SeqNum{Target: 0x401000, Time: 0}},
		{Opcode: pcode.INT_ZEXT, Output: ptr(pcode.Reg(0x0, 8)), Inputs: []pcode.Varnode{pcode.Unique(0x0, 4)}, Seq: pcode.SeqNum{Target: 0x401000, Time: 1}},
		{Opcode: pcode.BRANCH, Inputs: []pcode.Varnode{pcode.RAM(0x402000, 8)}, Seq: pcode.SeqNum{Target: 0x401000, Time: 2}},
	}
	return pcode.NewFrame(code, index, branched, nil)
}
