// Package terminal connects the simulated console to the host terminal.
//
// A reader goroutine feeds keys into a channel and a writer goroutine
// drains a bounded output queue, so the device callbacks that poll and
// print never block.
package terminal

import (
	"errors"
	"io"
	"log"
	"os"
	"sync"

	"github.com/SmitUplenchwar2687/Tempo/internal/stddev"
)

const (
	DefaultQuitChar     = 0x1d // ^]
	defaultOutputBuffer = 256
	keyBuffer           = 64
)

// ErrClosed is returned by PutChar after the console is closed.
var ErrClosed = errors.New("terminal: console closed")

// Options configures a Console.
type Options struct {
	In  io.Reader
	Out io.Writer

	// BreakChar is delivered as a line break instead of a character.
	// Zero disables it.
	BreakChar byte
	// QuitChar closes Done instead of being delivered. Zero disables it.
	QuitChar byte

	// OutputBuffer bounds queued output; a full queue stalls the
	// transmitter.
	OutputBuffer int

	// Raw puts In into raw mode when it is a terminal.
	Raw bool
}

// Console is a host terminal. It implements stddev.Keyboard and
// stddev.Printer.
type Console struct {
	in  io.Reader
	out io.Writer

	breakChar byte
	quitChar  byte

	keys chan stddev.Key
	outq chan byte

	done     chan struct{}
	doneOnce sync.Once
	writerWG sync.WaitGroup

	restore func() error
}

// Open starts the console goroutines. Close must be called to restore
// the terminal.
func Open(opts Options) (*Console, error) {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.OutputBuffer <= 0 {
		opts.OutputBuffer = defaultOutputBuffer
	}

	c := &Console{
		in:        opts.In,
		out:       opts.Out,
		breakChar: opts.BreakChar,
		quitChar:  opts.QuitChar,
		keys:      make(chan stddev.Key, keyBuffer),
		outq:      make(chan byte, opts.OutputBuffer),
		done:      make(chan struct{}),
		restore:   func() error { return nil },
	}

	if f, ok := opts.In.(*os.File); ok && opts.Raw {
		restore, err := makeRaw(f)
		if err != nil {
			return nil, err
		}
		c.restore = restore
	}

	go c.readLoop()
	c.writerWG.Add(1)
	go c.writeLoop()
	return c, nil
}

// Poll returns the next key without blocking.
func (c *Console) Poll() (stddev.Key, bool) {
	select {
	case k := <-c.keys:
		return k, true
	default:
		return stddev.Key{}, false
	}
}

// PutChar queues b for output. It returns stddev.ErrStall when the queue
// is full.
func (c *Console) PutChar(b byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.outq <- b:
		return nil
	default:
		return stddev.ErrStall
	}
}

// Done is closed when the quit character is typed, input ends, or the
// console is closed.
func (c *Console) Done() <-chan struct{} {
	return c.done
}

// Close stops the writer after flushing queued output and restores the
// terminal mode.
//
// The reader goroutine cannot be interrupted while blocked in In.Read: it
// exits when that read next returns, or with the process. Close does not
// close In, which is usually the process's stdin.
func (c *Console) Close() error {
	c.shutdown()
	c.writerWG.Wait()
	return c.restore()
}

func (c *Console) shutdown() {
	c.doneOnce.Do(func() { close(c.done) })
}

func (c *Console) readLoop() {
	buf := make([]byte, 64)
	for {
		n, err := c.in.Read(buf)
		for _, b := range buf[:n] {
			if c.quitChar != 0 && b == c.quitChar {
				c.shutdown()
				return
			}
			k := stddev.Key{Char: b}
			if c.breakChar != 0 && b == c.breakChar {
				k = stddev.Key{Break: true}
			}
			select {
			case c.keys <- k:
			case <-c.done:
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Printf("terminal: read: %v", err)
			}
			c.shutdown()
			return
		}
	}
}

func (c *Console) writeLoop() {
	defer c.writerWG.Done()
	for {
		select {
		case b := <-c.outq:
			c.write(b)
		case <-c.done:
			for {
				select {
				case b := <-c.outq:
					c.write(b)
				default:
					return
				}
			}
		}
	}
}

func (c *Console) write(b byte) {
	if _, err := c.out.Write([]byte{b}); err != nil {
		log.Printf("terminal: write: %v", err)
	}
}
