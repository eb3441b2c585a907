// Package progress renders terminal feedback on stderr: a spinner while a
// request is in flight and a coloured summary when it completes.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Frames are the braille spinner frames.
var Frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// DefaultInterval is the time between spinner frames.
const DefaultInterval = 80 * time.Millisecond

// clearLine returns the cursor to column 0 and erases the line.
const clearLine = "\r\033[K"

// IsTerminal reports whether stream is a terminal. Streams without a file
// descriptor (buffers, pipes wrapped in readers or writers) are not.
func IsTerminal(stream any) bool {
	f, ok := stream.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Spinner animates a message on a single line until stopped.
//
// A disabled spinner (not a terminal) prints nothing, so it is always safe
// to Start and Stop one.
type Spinner struct {
	out      io.Writer
	interval time.Duration
	enabled  bool
	color    *color.Color

	mu      sync.Mutex
	message string
	running bool
	stop    chan struct{}
	done    chan struct{}
	started time.Time
}

// NewSpinner creates a spinner writing to out. It animates only when out is
// a terminal.
func NewSpinner(out io.Writer, message string) *Spinner {
	return newSpinner(out, message, IsTerminal(out))
}

func newSpinner(out io.Writer, message string, enabled bool) *Spinner {
	c := color.New(color.FgBlue)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return &Spinner{
		out:      out,
		interval: DefaultInterval,
		enabled:  enabled,
		color:    c,
		message:  message,
	}
}

// Start begins the animation. Calling Start on a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.started = time.Now()
	if !s.enabled {
		return
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
}

func (s *Spinner) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s.render(Frames[i%len(Frames)])
		select {
		case <-stop:
			fmt.Fprint(s.out, clearLine)
			return
		case <-ticker.C:
		}
	}
}

func (s *Spinner) render(frame string) {
	s.mu.Lock()
	msg := s.message
	elapsed := time.Since(s.started).Truncate(time.Second)
	s.mu.Unlock()

	fmt.Fprint(s.out, clearLine)
	s.color.Fprint(s.out, frame)
	fmt.Fprintf(s.out, " %s (%s)", msg, elapsed)
}

// SetMessage replaces the text shown next to the spinner.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop ends the animation, clears the line and returns how long the
// spinner ran. Stop on a spinner that was never started returns 0.
func (s *Spinner) Stop() time.Duration {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return 0
	}
	s.running = false
	elapsed := time.Since(s.started)
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	return elapsed
}
