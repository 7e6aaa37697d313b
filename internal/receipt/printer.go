package receipt

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// WriterPrinter writes receipt text to w, one receipt at a time.
type WriterPrinter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterPrinter(w io.Writer) *WriterPrinter {
	return &WriterPrinter{w: w}
}

func (p *WriterPrinter) Print(_ context.Context, r *Receipt) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := io.WriteString(p.w, r.Text()+"\f")
	return err
}

// OpenOutput resolves a receipt sink. "stderr" (or empty) and "stdout" use the
// process streams; anything else is a file opened for append. The returned
// close func is safe to call for every target.
func OpenOutput(target string) (io.Writer, func() error, error) {
	nop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(target)) {
	case "", "stderr":
		return os.Stderr, nop, nil
	case "stdout":
		return os.Stdout, nop, nil
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nop, fmt.Errorf("open receipt output %s: %w", target, err)
	}
	return f, f.Close, nil
}
