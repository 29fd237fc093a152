package log

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

var ErrRecordingCorrupt = errors.New("recording corrupt")

//go:embed recording.schema.json
var recordingSchema string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func lineSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("recording.schema.json", recordingSchema)
	})
	return schema, schemaErr
}

type Recording struct {
	Header Header
	Ticks  []TickEntry
}

// Final is the last tick entry, or the zero value for a session that never ticked.
func (r *Recording) Final() TickEntry {
	if len(r.Ticks) == 0 {
		return TickEntry{}
	}
	return r.Ticks[len(r.Ticks)-1]
}

func (r *Recording) InputCount() int {
	n := 0
	for _, t := range r.Ticks {
		n += len(t.Inputs)
	}
	return n
}

func ReadRecordingFile(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRecording(f)
}

// ReadRecording decodes a zstd JSONL journal, validating every line.
func ReadRecording(r io.Reader) (*Recording, error) {
	sch, err := lineSchema()
	if err != nil {
		return nil, fmt.Errorf("recording schema: %w", err)
	}
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var rec Recording
	lineNo := 0
	sawHeader := false
	var lastTick uint64
	for sc.Scan() {
		lineNo++
		line := sc.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if err := validateLine(sch, line); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrRecordingCorrupt, lineNo, err)
		}
		var kind struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(line, &kind); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrRecordingCorrupt, lineNo, err)
		}

		switch kind.Type {
		case lineHeader:
			if sawHeader {
				return nil, fmt.Errorf("%w: line %d: second header", ErrRecordingCorrupt, lineNo)
			}
			if err := json.Unmarshal(line, &rec.Header); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrRecordingCorrupt, lineNo, err)
			}
			sawHeader = true
		case lineTick:
			if !sawHeader {
				return nil, fmt.Errorf("%w: line %d: tick before header", ErrRecordingCorrupt, lineNo)
			}
			var e TickEntry
			if err := json.Unmarshal(line, &e); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrRecordingCorrupt, lineNo, err)
			}
			if e.Tick <= lastTick {
				return nil, fmt.Errorf("%w: line %d: tick %d not after %d", ErrRecordingCorrupt, lineNo, e.Tick, lastTick)
			}
			lastTick = e.Tick
			rec.Ticks = append(rec.Ticks, e)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !sawHeader {
		return nil, fmt.Errorf("%w: missing header", ErrRecordingCorrupt)
	}
	return &rec, nil
}

func validateLine(sch *jsonschema.Schema, line []byte) error {
	d := json.NewDecoder(bytes.NewReader(line))
	d.UseNumber()
	var v any
	if err := d.Decode(&v); err != nil {
		return err
	}
	return sch.Validate(v)
}
