package bluenrg

import (
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/bluewire/bluenrg/event"
)

// H4 packet indicator and HCI event header layout. A vendor event
// travels as an HCI event packet with the vendor event code; its
// parameters are the opcode-prefixed buffer the event package decodes.
const (
	pktTypeEvent    = 0x04
	eventCodeVendor = 0xFF
	eventHeaderLen  = 3
)

// Handler receives each decoded vendor event.
type Handler func(event.Event)

// ErrorHandler receives per-buffer decode failures. The monitor keeps
// reading after a failure; a corrupt buffer only loses itself.
type ErrorHandler func(error)

// Monitor reads an H4 byte stream from a controller, reassembles HCI
// event packets and hands every decoded vendor event to the configured
// handler. Non-vendor events are logged and skipped.
type Monitor struct {
	src     io.Reader
	dec     event.Decoder
	handler Handler
	onError ErrorHandler
	logger  Logger

	asm assembler

	done chan struct{}
	cmu  sync.Mutex
}

// An Option configures a Monitor.
type Option func(*Monitor) error

// OptVariant selects the firmware variant to decode for.
func OptVariant(v event.Variant) Option {
	return func(m *Monitor) error {
		m.dec.Variant = v
		return nil
	}
}

// OptHandler sets the vendor event handler.
func OptHandler(h Handler) Option {
	return func(m *Monitor) error {
		if h == nil {
			return errors.New("nil handler")
		}
		m.handler = h
		return nil
	}
}

// OptErrorHandler sets the decode failure handler.
func OptErrorHandler(h ErrorHandler) Option {
	return func(m *Monitor) error {
		if h == nil {
			return errors.New("nil error handler")
		}
		m.onError = h
		return nil
	}
}

// OptLogger overrides the package logger for this monitor.
func OptLogger(l Logger) Option {
	return func(m *Monitor) error {
		if l == nil {
			return errors.New("nil logger")
		}
		m.logger = l
		return nil
	}
}

// NewMonitor wraps an H4 source, typically an open serial port.
func NewMonitor(src io.Reader, opts ...Option) (*Monitor, error) {
	if src == nil {
		return nil, errors.New("nil source")
	}
	m := &Monitor{
		src:    src,
		logger: GetLogger(),
		done:   make(chan struct{}),
	}
	m.handler = func(e event.Event) {
		m.logger.Infof("event %#04x: %v", uint16(e.Opcode()), e)
	}
	m.onError = func(err error) {
		m.logger.Errorf("decode: %v", err)
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, errors.Wrap(err, "can't configure monitor")
		}
	}
	return m, nil
}

// Run reads the source until it is exhausted or the monitor is closed.
// It returns nil on a clean end of stream.
func (m *Monitor) Run() error {
	buf := make([]byte, 512)
	for {
		select {
		case <-m.done:
			return nil
		default:
		}

		n, err := m.src.Read(buf)
		if n > 0 {
			for _, frame := range m.asm.feed(buf[:n]) {
				m.dispatch(frame)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			select {
			case <-m.done:
				return nil
			default:
			}
			return errors.Wrap(err, "can't read h4 stream")
		}
	}
}

// Close stops Run and closes the source if the source is a Closer.
func (m *Monitor) Close() error {
	m.cmu.Lock()
	defer m.cmu.Unlock()

	select {
	case <-m.done:
		return nil
	default:
	}
	close(m.done)
	if c, ok := m.src.(io.Closer); ok {
		return errors.Wrap(c.Close(), "can't close h4 source")
	}
	return nil
}

func (m *Monitor) dispatch(frame []byte) {
	if frame[1] != eventCodeVendor {
		m.logger.Debugf("skipping event code %#02x", frame[1])
		return
	}
	e, err := m.dec.Decode(frame[eventHeaderLen:])
	if err != nil {
		m.onError(err)
		return
	}
	m.handler(e)
}

// assembler reassembles HCI event packets from arbitrarily chunked
// reads. A half-built frame is abandoned when its deadline passes, so
// a dropped byte costs one frame instead of desynchronizing the stream
// for good.
type assembler struct {
	frame    []byte
	deadline time.Time
}

const frameTimeout = 500 * time.Millisecond

// feed consumes one read chunk and returns the packets it completed.
// Each returned packet is indicator, event code, parameter length and
// parameters.
func (a *assembler) feed(b []byte) [][]byte {
	if a.frame == nil || time.Now().After(a.deadline) {
		a.reset()
	}

	var out [][]byte
	for len(b) > 0 {
		if len(a.frame) < eventHeaderLen {
			need := eventHeaderLen - len(a.frame)
			if len(a.frame) == 0 && b[0] != pktTypeEvent {
				// resync one byte at a time
				b = b[1:]
				continue
			}
			if need > len(b) {
				a.frame = append(a.frame, b...)
				return out
			}
			a.frame = append(a.frame, b[:need]...)
			b = b[need:]
			continue
		}

		rem := int(a.frame[2]) + eventHeaderLen - len(a.frame)
		if rem > len(b) {
			a.frame = append(a.frame, b...)
			return out
		}
		out = append(out, append(a.frame, b[:rem]...))
		b = b[rem:]
		a.reset()
	}
	return out
}

func (a *assembler) reset() {
	a.frame = make([]byte, 0, 256)
	a.deadline = time.Now().Add(frameTimeout)
}
