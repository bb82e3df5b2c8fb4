package index

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Encode writes snap in format f. Both formats use the json field names.
func Encode(w io.Writer, snap *Snapshot, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	default:
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		enc.UseCompactInts(true)
		return enc.Encode(snap)
	}
}

// Decode reads a snapshot and rejects other schema versions.
func Decode(r io.Reader, f Format) (*Snapshot, error) {
	var snap Snapshot
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&snap); err != nil {
			return nil, fmt.Errorf("decode index: %w", err)
		}
	default:
		dec := msgpack.NewDecoder(r)
		dec.SetCustomStructTag("json")
		if err := dec.Decode(&snap); err != nil {
			return nil, fmt.Errorf("decode index: %w", err)
		}
	}
	if snap.Schema != Schema {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrSchema, snap.Schema, Schema)
	}
	return &snap, nil
}

// WriteFile writes snap to path atomically through a temp file in the same
// directory.
func WriteFile(path string, snap *Snapshot, f Format) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".kyidx-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = Encode(tmp, snap, f); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func ReadFile(path string, f Format) (*Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Decode(file, f)
}
