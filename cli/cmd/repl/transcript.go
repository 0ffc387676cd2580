package repl

import (
	"bytes"
	"strings"
	"sync"
)

// Transcript collects console output written by natives while the REPL
// owns the terminal. The REPL prints and clears it after each evaluation.
type Transcript struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewTranscript returns an empty Transcript.
func NewTranscript() *Transcript { return new(Transcript) }

// Write implements io.Writer.
func (t *Transcript) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.buf.Write(p)
}

// drain returns the collected output without its final newline and clears
// it.
func (t *Transcript) drain() string {
	if t == nil {
		return ""
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s := strings.TrimSuffix(t.buf.String(), "\n")
	t.buf.Reset()

	return s
}
