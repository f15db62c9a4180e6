package kernel

import (
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/0xjjjjjj/ps2recomp/recomp"
	"github.com/0xjjjjjj/ps2recomp/runtime"
)

const (
	// VBlankPeriod is the interval between VBlank ticks (~60Hz).
	VBlankPeriod = 16667 * time.Microsecond
	// MaxCatchup caps how many missed VBlank periods are delivered in one
	// poll after the main thread has been away.
	MaxCatchup = 4
	// INTC cause indices for the two VBlank edges.
	IntcVBlankStart = 2
	IntcVBlankEnd   = 3
	// KEOK is the EE kernel's success status.
	KEOK = 0
)

// Controller owns the interrupt-delivery state the syscall and dispatch
// paths share: the INTC/DMAC tables, the VSync registration, the
// pending-tick counter, and the VBlank timer worker. One Controller
// exists per runtime; it is borrowed wherever a syscall or dispatch call
// needs it.
//
// Lock order, enforced by construction (no code path acquires these out
// of order): workerMu > intc.mu/dmac.mu > vsyncMu. Handlers are always
// invoked with none of these held.
type Controller struct {
	gate       *runtime.Gate
	mainThread *runtime.MainThread
	registry   *recomp.Registry
	logger     *log.Logger

	vblankPeriod time.Duration
	maxCatchup   int32
	irqStackTop  uint32

	fs *FileSystem

	intc *handlerTable
	dmac *handlerTable

	vsyncMu     sync.Mutex
	vsyncFlag   uint32
	vsyncTick   uint32
	tickCounter uint64

	pendingVBlank atomic.Int32

	workerMu      sync.Mutex
	workerRunning bool
	workerStop    chan struct{}
	workerDone    chan struct{}

	missingFnWarnings *warningLimiter
	handlerPanicWarns *warningLimiter

	osdConfigParam atomic.Uint32

	semaMu  sync.Mutex
	semas   map[uint32]*semaState
	nextSem uint32

	sleepMu  sync.Mutex
	sleepers map[uint64]*sleepState

	stopRequested atomic.Bool
}

// NewController builds an interrupt controller bound to the given
// execution gate, main-thread record, and native-function registry.
func NewController(gate *runtime.Gate, mainThread *runtime.MainThread, registry *recomp.Registry) *Controller {
	return &Controller{
		gate:              gate,
		mainThread:        mainThread,
		registry:          registry,
		logger:            log.New(os.Stderr, "", log.LstdFlags),
		vblankPeriod:      VBlankPeriod,
		maxCatchup:        MaxCatchup,
		irqStackTop:       recomp.PS2IRQStackTop,
		intc:              newHandlerTable(),
		dmac:              newHandlerTable(),
		missingFnWarnings: newWarningLimiter(256),
		handlerPanicWarns: newWarningLimiter(256),
		semas:             make(map[uint32]*semaState),
		nextSem:           1,
		sleepers:          make(map[uint64]*sleepState),
	}
}

// SetTiming overrides the VBlank period and catch-up cap, for test and
// tooling configurations. Call before the timer worker starts; values <= 0
// keep the current setting.
func (c *Controller) SetTiming(period time.Duration, maxCatchup int) {
	if period > 0 {
		c.vblankPeriod = period
	}
	if maxCatchup > 0 {
		c.maxCatchup = int32(maxCatchup)
	}
}

// SetIRQStackTop overrides the stack pointer handlers run on when their
// registration did not supply one. Zero keeps the current setting.
func (c *Controller) SetIRQStackTop(addr uint32) {
	if addr != 0 {
		c.irqStackTop = addr
	}
}

// SetFileSystem installs the guest-visible filesystem the file syscalls
// route to. Without one, FioOpen fails with a bad-path status and the
// other file syscalls with a bad-descriptor status.
func (c *Controller) SetFileSystem(fs *FileSystem) {
	c.fs = fs
}

// RequestStop asks the VBlank timer worker to exit; it will observe this
// within one VBlank period.
func (c *Controller) RequestStop() {
	c.stopRequested.Store(true)
}

// IsStopRequested reports whether RequestStop has been called.
func (c *Controller) IsStopRequested() bool {
	return c.stopRequested.Load()
}
