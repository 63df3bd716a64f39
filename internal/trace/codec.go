package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/roach88/slotbench/internal/ir"
)

// Stats describes what the loader saw.
type Stats struct {
	// Lines is the number of lines read, including ignored ones.
	Lines int `json:"lines"`

	// Ops is the number of operations produced.
	Ops int `json:"ops"`

	// Dropped is the number of malformed lines skipped.
	Dropped int `json:"dropped"`
}

// Parse reads a trace and returns its operations in order.
// Malformed lines are dropped. The error is non-nil only if r fails.
func Parse(r io.Reader) (ir.Sequence, error) {
	seq, _, err := ParseWithStats(r)
	return seq, err
}

// maxLineLen bounds a trace line. Longer lines cannot be a valid operation
// and are dropped.
const maxLineLen = 4096

// ParseWithStats is Parse plus line accounting.
func ParseWithStats(r io.Reader) (ir.Sequence, Stats, error) {
	var (
		seq   ir.Sequence
		stats Stats
	)

	br := bufio.NewReaderSize(r, maxLineLen)
	for {
		raw, err := br.ReadSlice('\n')
		if err == bufio.ErrBufferFull {
			stats.Lines++
			stats.Dropped++
			if err = skipLine(br); err == io.EOF {
				break
			}
			if err != nil {
				return nil, stats, fmt.Errorf("read trace: %w", err)
			}
			continue
		}
		if err != nil && err != io.EOF {
			return nil, stats, fmt.Errorf("read trace: %w", err)
		}
		if len(raw) > 0 {
			stats.Lines++
			if line := strings.TrimSpace(string(raw)); line != "" && !strings.HasPrefix(line, "#") {
				if op, ok := parseLine(line); ok {
					seq = append(seq, op)
				} else {
					stats.Dropped++
				}
			}
		}
		if err == io.EOF {
			break
		}
	}

	stats.Ops = len(seq)
	return seq, stats, nil
}

// skipLine discards input up to and including the next newline.
func skipLine(br *bufio.Reader) error {
	for {
		_, err := br.ReadSlice('\n')
		if err != bufio.ErrBufferFull {
			return err
		}
	}
}

// parseLine parses one non-empty line.
func parseLine(line string) (ir.Operation, bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "string":
		if len(fields) != 1 {
			return ir.Operation{}, false
		}
		return ir.Snapshot(), true

	case "read":
		if len(fields) != 2 {
			return ir.Operation{}, false
		}
		slot, err := strconv.Atoi(fields[1])
		if err != nil {
			return ir.Operation{}, false
		}
		return ir.Read(slot), true

	case "write":
		if len(fields) != 3 {
			return ir.Operation{}, false
		}
		slot, err := strconv.Atoi(fields[1])
		if err != nil {
			return ir.Operation{}, false
		}
		value, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return ir.Operation{}, false
		}
		return ir.Write(slot, value), true
	}
	return ir.Operation{}, false
}

// LoadFile parses the trace file at path.
func LoadFile(path string) (ir.Sequence, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()

	seq, stats, err := ParseWithStats(f)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", path, err)
	}
	return seq, stats, nil
}

// LoadFiles parses each file into its own sequence, one per worker.
func LoadFiles(paths []string) ([]ir.Sequence, Stats, error) {
	seqs := make([]ir.Sequence, 0, len(paths))
	var total Stats
	for _, p := range paths {
		seq, stats, err := LoadFile(p)
		if err != nil {
			return nil, total, err
		}
		total.Lines += stats.Lines
		total.Ops += stats.Ops
		total.Dropped += stats.Dropped
		seqs = append(seqs, seq)
	}
	return seqs, total, nil
}

// Encode writes seq in the text format, one line per operation.
func Encode(w io.Writer, seq ir.Sequence) error {
	bw := bufio.NewWriter(w)
	for i, op := range seq {
		if !op.Kind.Valid() {
			return fmt.Errorf("encode trace: op %d: invalid kind %d", i, op.Kind)
		}
		if _, err := bw.WriteString(op.String()); err != nil {
			return fmt.Errorf("encode trace: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("encode trace: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("encode trace: %w", err)
	}
	return nil
}

// WriteFile writes seq to path, replacing any existing file.
func WriteFile(path string, seq ir.Sequence) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trace: %w", err)
	}
	if err := Encode(f, seq); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close trace: %w", err)
	}
	return nil
}

// FileName returns the path of worker i's trace: <dir>/<prefix><i>.txt.
func FileName(dir, prefix string, i int) string {
	return filepath.Join(dir, prefix+strconv.Itoa(i)+".txt")
}

// WriteFiles writes one file per sequence using FileName and returns the
// paths in worker order. dir is created if missing.
func WriteFiles(dir, prefix string, seqs []ir.Sequence) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create trace dir: %w", err)
	}
	paths := make([]string, len(seqs))
	for i, seq := range seqs {
		paths[i] = FileName(dir, prefix, i)
		if err := WriteFile(paths[i], seq); err != nil {
			return nil, err
		}
	}
	return paths, nil
}
