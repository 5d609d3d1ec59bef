package input

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/oklog/ulid/v2"
	"go.uber.org/multierr"
)

const replayVersion = 1

type replayHeader struct {
	ID      string    `json:"id"`
	Version int       `json:"version"`
	Started time.Time `json:"started"`
	Actor   string    `json:"actor,omitempty"`
}

type replayFrame struct {
	Tick uint64  `json:"tick"`
	Cmd  Command `json:"cmd"`
}

// Recorder passes commands through from src while appending them to a
// zstd-compressed JSONL file, one frame per tick.
type Recorder struct {
	src  Producer
	id   ulid.ULID
	f    *os.File
	enc  *zstd.Encoder
	w    *bufio.Writer
	tick uint64
	err  error
}

// NewRecorder creates path and writes the replay header.
func NewRecorder(path, actor string, src Producer) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create replay: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("replay encoder: %w", err)
	}
	r := &Recorder{
		src: src,
		id:  ulid.Make(),
		f:   f,
		enc: enc,
		w:   bufio.NewWriterSize(enc, 64*1024),
	}
	hdr := replayHeader{ID: r.id.String(), Version: replayVersion, Started: time.Now().UTC(), Actor: actor}
	if err := r.writeLine(hdr); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

// ID identifies the recording.
func (r *Recorder) ID() ulid.ULID { return r.id }

// Err returns the first write error. Recording stops after it; commands keep
// flowing.
func (r *Recorder) Err() error { return r.err }

func (r *Recorder) ReadCommand() Command {
	cmd := r.src.ReadCommand()
	if r.err == nil {
		r.err = r.writeLine(replayFrame{Tick: r.tick, Cmd: cmd})
	}
	r.tick++
	return cmd
}

func (r *Recorder) writeLine(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := r.w.Write(b); err != nil {
		return err
	}
	return r.w.WriteByte('\n')
}

// Close flushes and closes the file.
func (r *Recorder) Close() error {
	var err error
	if r.w != nil {
		err = multierr.Append(err, r.w.Flush())
		r.w = nil
	}
	if r.enc != nil {
		err = multierr.Append(err, r.enc.Close())
		r.enc = nil
	}
	if r.f != nil {
		err = multierr.Append(err, r.f.Close())
		r.f = nil
	}
	return err
}

// Replay plays back a recorded file, one frame per ReadCommand, then idles.
type Replay struct {
	ID     ulid.ULID
	Actor  string
	frames []Command
	pos    int
}

// LoadReplay reads a file written by Recorder.
func LoadReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("replay decoder: %w", err)
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read replay header: %w", err)
		}
		return nil, errors.New("replay: empty file")
	}
	var hdr replayHeader
	if err := json.Unmarshal(sc.Bytes(), &hdr); err != nil {
		return nil, fmt.Errorf("replay header: %w", err)
	}
	if hdr.Version != replayVersion {
		return nil, fmt.Errorf("replay: unsupported version %d", hdr.Version)
	}
	id, err := ulid.Parse(hdr.ID)
	if err != nil {
		return nil, fmt.Errorf("replay id: %w", err)
	}

	rp := &Replay{ID: id, Actor: hdr.Actor}
	for sc.Scan() {
		var fr replayFrame
		if err := json.Unmarshal(sc.Bytes(), &fr); err != nil {
			return nil, fmt.Errorf("replay frame %d: %w", len(rp.frames), err)
		}
		if fr.Tick != uint64(len(rp.frames)) {
			return nil, fmt.Errorf("replay: tick gap at %d (got %d)", len(rp.frames), fr.Tick)
		}
		rp.frames = append(rp.frames, fr.Cmd)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read replay: %w", err)
	}
	return rp, nil
}

// Len returns the number of recorded frames.
func (r *Replay) Len() int { return len(r.frames) }

// Done reports whether every frame has been played.
func (r *Replay) Done() bool { return r.pos >= len(r.frames) }

func (r *Replay) ReadCommand() Command {
	if r.Done() {
		return Empty()
	}
	c := r.frames[r.pos]
	r.pos++
	return c
}
