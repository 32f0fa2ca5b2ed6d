package persistence

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

// Property values travel inside interface-typed maps, so their concrete
// types must be known to gob ahead of time.
func init() {
	gob.Register(int64(0))
	gob.Register(float64(0))
	gob.Register("")
}

// WriteSnapshot streams the dataset as framed gob records: all vertices
// first, then all edges, matching the order BuildGraph expects.
func WriteSnapshot(w io.Writer, ds *Dataset) error {
	bw := bufio.NewWriter(w)
	fw := NewFrameWriter(bw)

	for i := range ds.Vertices {
		if err := writeRecord(fw, OpCodeVertex, &ds.Vertices[i]); err != nil {
			return fmt.Errorf("vertex %d: %w", i, err)
		}
	}
	for i := range ds.Edges {
		if err := writeRecord(fw, OpCodeEdge, &ds.Edges[i]); err != nil {
			return fmt.Errorf("edge %d: %w", i, err)
		}
	}
	return bw.Flush()
}

func writeRecord(fw *FrameWriter, opcode byte, rec any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return err
	}
	return fw.WriteFrame(opcode, buf.Bytes())
}

// ReadSnapshot decodes a framed snapshot back into a dataset. Corruption
// (bad magic, checksum mismatch, truncation) aborts the read with the
// frame error.
func ReadSnapshot(r io.Reader) (*Dataset, error) {
	br := bufio.NewReader(r)
	ds := &Dataset{}

	for {
		opcode, payload, err := ReadFrame(br)
		if err == io.EOF {
			return ds, nil
		}
		if err != nil {
			return nil, err
		}
		dec := gob.NewDecoder(bytes.NewReader(payload))
		switch opcode {
		case OpCodeVertex:
			var rec VertexRecord
			if err := dec.Decode(&rec); err != nil {
				return nil, fmt.Errorf("decode vertex record: %w", err)
			}
			ds.Vertices = append(ds.Vertices, rec)
		case OpCodeEdge:
			var rec EdgeRecord
			if err := dec.Decode(&rec); err != nil {
				return nil, fmt.Errorf("decode edge record: %w", err)
			}
			ds.Edges = append(ds.Edges, rec)
		default:
			return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownOpCode, opcode)
		}
	}
}

// SaveFile writes the dataset snapshot to path atomically: a temp file in
// the same directory, fsync, then rename.
func SaveFile(path string, ds *Dataset) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := WriteSnapshot(f, ds); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// LoadFile reads a snapshot file into a dataset.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSnapshot(f)
}
