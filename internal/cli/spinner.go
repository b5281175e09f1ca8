package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates msg on w while a slow step such as a Graphviz layout
// runs. It stops when stop or fail is called or when ctx ends.
type spinner struct {
	w      io.Writer
	msg    string
	cancel context.CancelFunc
	exited chan struct{}
	once   sync.Once
}

// startSpinner starts drawing immediately.
func startSpinner(ctx context.Context, w io.Writer, msg string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &spinner{w: w, msg: msg, cancel: cancel, exited: make(chan struct{})}
	go s.loop(ctx)
	return s
}

func (s *spinner) loop(ctx context.Context) {
	defer close(s.exited)
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			frame := spinnerFrames[i%len(spinnerFrames)]
			fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.msg))
		}
	}
}

// stop halts the animation and blanks the line. Later calls do nothing.
func (s *spinner) stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.exited
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.msg)+4))
	})
}

// fail stops the spinner and reports msg as an error line.
func (s *spinner) fail(msg string) {
	s.stop()
	printError(s.w, "%s", msg)
}
