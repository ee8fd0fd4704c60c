// Package logfile implements the receipt sink over an append-only UTF-8 text
// file, the only persistence this system has.
package logfile

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/ecomarket/ecopos/internal/domain/receipt"
)

// LogWriteError indicates the transaction log could not be appended to.
// Checkout treats it as a warning: the sale stands, the entry is lost.
type LogWriteError struct {
	Path string
	Err  error
}

func (e *LogWriteError) Error() string {
	return fmt.Sprintf("write transaction log %s: %v", e.Path, e.Err)
}

func (e *LogWriteError) Unwrap() error {
	return e.Err
}

var _ receipt.Sink = (*Appender)(nil)

// Appender appends receipt entries to a single log file. Entries are written
// with one Write call each, so a single checkout's lines never interleave
// with another's.
type Appender struct {
	path string
	mu   sync.Mutex
}

// New returns an Appender for the given log file path. The file is created on
// first append.
func New(path string) *Appender {
	return &Appender{path: path}
}

// Path returns the log file path.
func (a *Appender) Path() string {
	return a.path
}

// Append writes one entry followed by a blank separator line. The file is
// opened in append mode every time; it is never truncated or rewritten.
func (a *Appender) Append(ctx context.Context, entry string) error {
	if err := ctx.Err(); err != nil {
		return &LogWriteError{Path: a.path, Err: err}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &LogWriteError{Path: a.path, Err: err}
	}

	_, werr := f.WriteString(entry + "\n")
	cerr := f.Close()
	if werr != nil {
		return &LogWriteError{Path: a.path, Err: werr}
	}
	if cerr != nil {
		return &LogWriteError{Path: a.path, Err: cerr}
	}
	return nil
}

// Check reports whether the log destination is writable. Registered as a
// health check so the operator learns about storage trouble before checkout.
func (a *Appender) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &LogWriteError{Path: a.path, Err: err}
	}
	return f.Close()
}

// ScanBlocks reads an append-only transaction log and calls fn once per
// receipt block. Blocks are separated by blank lines; trailing newlines are
// preserved on each block.
func ScanBlocks(r io.Reader, fn func(block string) error) error {
	scanner := bufio.NewScanner(r)

	var cur strings.Builder
	flush := func() error {
		if cur.Len() == 0 {
			return nil
		}
		block := cur.String()
		cur.Reset()
		return fn(block)
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return err
			}
			continue
		}
		cur.WriteString(line)
		cur.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return flush()
}
