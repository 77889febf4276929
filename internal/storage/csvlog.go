package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var ErrClosed = errors.New("storage: log closed")

const DefaultBuffer = 256

// Stats counts what happened to appended records. Failed counts write
// errors and rows whose info could not be encoded.
type Stats struct {
	Written int64
	Dropped int64
	Failed  int64
}

// CSVLog appends records to a CSV file from a single writer goroutine.
// By default Append never blocks the caller and rows are dropped when the
// buffer is full.
type CSVLog struct {
	path     string
	file     *os.File
	w        *csv.Writer
	logger   zerolog.Logger
	blocking bool

	mu     sync.RWMutex
	closed bool
	rows   chan Record
	done   chan struct{}

	written  atomic.Int64
	dropped  atomic.Int64
	failed   atomic.Int64
	firstErr error
}

// Option configures a CSVLog.
type Option func(*CSVLog)

// Blocking makes Append wait for buffer space instead of dropping the row.
// For sessions with no real-time tick to protect.
func Blocking() Option {
	return func(l *CSVLog) { l.blocking = true }
}

// OpenCSVLog opens path for appending, writing the header if the file is new
// or empty.
func OpenCSVLog(path string, buffer int, logger zerolog.Logger, opts ...Option) (*CSVLog, error) {
	if path == "" {
		return nil, fmt.Errorf("storage: empty log path")
	}
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("storage: stat %s: %w", path, err)
	}

	l := &CSVLog{
		path:   path,
		file:   f,
		w:      csv.NewWriter(f),
		logger: logger.With().Str("component", "csvlog").Str("path", path).Logger(),
		rows:   make(chan Record, buffer),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	if fi.Size() == 0 {
		if err := l.w.Write(header); err != nil {
			f.Close()
			return nil, fmt.Errorf("storage: write header: %w", err)
		}
		l.w.Flush()
		if err := l.w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("storage: write header: %w", err)
		}
	}

	go l.writeLoop()
	return l, nil
}

func (l *CSVLog) Path() string {
	return l.path
}

// Append queues r for writing. It reports whether the record was accepted.
func (l *CSVLog) Append(r Record) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		l.dropped.Add(1)
		return false
	}

	if l.blocking {
		l.rows <- r
		return true
	}

	select {
	case l.rows <- r:
		return true
	default:
		if n := l.dropped.Add(1); n == 1 || n%100 == 0 {
			l.logger.Warn().Int64("dropped", n).Msg("log buffer full, dropping rows")
		}
		return false
	}
}

func (l *CSVLog) writeLoop() {
	defer close(l.done)
	var pending int64
	for r := range l.rows {
		row, err := encode(r)
		if err != nil {
			l.fail(fmt.Errorf("tick %d: encode info: %w", r.Tick, err))
		}
		if err := l.w.Write(row); err != nil {
			l.fail(err)
			continue
		}
		pending++
		if len(l.rows) == 0 {
			l.flush(pending)
			pending = 0
		}
	}
	l.flush(pending)
}

// flush writes buffered rows through to the file. n rows were buffered.
func (l *CSVLog) flush(n int64) {
	if n == 0 {
		return
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		l.fail(err)
		return
	}
	l.written.Add(n)
}

func (l *CSVLog) fail(err error) {
	if l.firstErr == nil {
		l.firstErr = err
	}
	n := l.failed.Add(1)
	l.logger.Error().Err(err).Int64("failed", n).Msg("write failed")
}

// Close drains queued records, flushes and closes the file. It returns the
// first write error seen over the log's lifetime.
func (l *CSVLog) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.closed = true
	close(l.rows)
	l.mu.Unlock()

	<-l.done

	err := l.firstErr
	if cerr := l.file.Close(); err == nil && cerr != nil {
		err = cerr
	}

	s := l.Stats()
	l.logger.Debug().Int64("written", s.Written).Int64("dropped", s.Dropped).Int64("failed", s.Failed).Msg("closed")

	if err != nil {
		return fmt.Errorf("storage: %s: %w", l.path, err)
	}
	return nil
}

func (l *CSVLog) Stats() Stats {
	return Stats{
		Written: l.written.Load(),
		Dropped: l.dropped.Load(),
		Failed:  l.failed.Load(),
	}
}

// encode always returns a row. An info value that cannot be encoded is
// written as {} and reported.
func encode(r Record) ([]string, error) {
	info := "{}"
	var err error
	if len(r.Info) > 0 {
		var b []byte
		if b, err = json.Marshal(r.Info); err == nil {
			info = string(b)
		}
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	s := r.State
	return []string{
		strconv.Itoa(r.Tick),
		f(r.Elapsed.Seconds()),
		f(s.BallX), f(s.BallY), f(s.VelX), f(s.VelY), f(s.SumX), f(s.SumY),
		f(s.PlatePitch), f(s.PlateRoll),
		strconv.FormatBool(s.Detected),
		f(r.Action.Pitch), f(r.Action.Roll),
		info,
	}, err
}
