package trace

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/zeusync/sailsim/internal/core/models"
	"github.com/zeusync/sailsim/internal/core/systems/physics"
)

var ErrDiverged = errors.New("traces diverged")

// Boat is one boat's outcome for a tick.
type Boat struct {
	ID     models.EntityID `json:"id"`
	Name   string          `json:"name,omitempty"`
	Pose   physics.Iso     `json:"pose"`
	Digest uint64          `json:"digest"`
}

// Tick is one JSONL line of a trace.
type Tick struct {
	Tick  uint64       `json:"tick"`
	Time  float64      `json:"time"`
	Dt    float64      `json:"dt"`
	Wind  physics.Vec2 `json:"wind"`
	Boats []Boat       `json:"boats"`
}

// Writer appends zstd-compressed JSONL ticks. It is safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	closer io.Closer
	enc    *zstd.Encoder
	w      *bufio.Writer
}

// NewWriter compresses onto dst. Closing the Writer does not close dst.
func NewWriter(dst io.Writer) (*Writer, error) {
	enc, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}
	return &Writer{enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}, nil
}

// Create opens path for a fresh trace, creating parent directories.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

func (w *Writer) Write(t Tick) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return os.ErrClosed
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Flush pushes buffered ticks through the compressor.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return os.ErrClosed
	}
	if err := w.w.Flush(); err != nil {
		return err
	}
	return w.enc.Flush()
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return nil
	}
	err := w.w.Flush()
	err = errors.Join(err, w.enc.Close())
	if w.closer != nil {
		err = errors.Join(err, w.closer.Close())
	}
	w.w, w.enc, w.closer = nil, nil, nil
	return err
}

// Read calls fn for every tick in a compressed trace, in order.
func Read(r io.Reader, fn func(Tick) error) error {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		var t Tick
		if err := json.Unmarshal(sc.Bytes(), &t); err != nil {
			return fmt.Errorf("trace line %d: %w", line, err)
		}
		if err := fn(t); err != nil {
			return err
		}
	}
	return sc.Err()
}

// Open reads the trace file at path.
func Open(path string, fn func(Tick) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Read(f, fn)
}

// Compare replays two traces side by side and reports the first tick where a
// boat's digest differs, or where one trace has a boat or tick the other
// lacks.
func Compare(a, b []Tick) error {
	for i := range min(len(a), len(b)) {
		if err := compareTick(a[i], b[i]); err != nil {
			return err
		}
	}
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d ticks vs %d", ErrDiverged, len(a), len(b))
	}
	return nil
}

func compareTick(a, b Tick) error {
	if a.Tick != b.Tick {
		return fmt.Errorf("%w: tick %d vs %d", ErrDiverged, a.Tick, b.Tick)
	}
	digests := make(map[models.EntityID]uint64, len(b.Boats))
	for _, boat := range b.Boats {
		digests[boat.ID] = boat.Digest
	}
	for _, boat := range a.Boats {
		d, ok := digests[boat.ID]
		if !ok {
			return fmt.Errorf("%w: tick %d: boat %d missing", ErrDiverged, a.Tick, boat.ID)
		}
		if d != boat.Digest {
			return fmt.Errorf("%w: tick %d: boat %d digest %x vs %x", ErrDiverged, a.Tick, boat.ID, boat.Digest, d)
		}
	}
	if len(a.Boats) != len(b.Boats) {
		return fmt.Errorf("%w: tick %d: %d boats vs %d", ErrDiverged, a.Tick, len(a.Boats), len(b.Boats))
	}
	return nil
}
