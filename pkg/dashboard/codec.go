package dashboard

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
)

// =============================================================================
// Snapshot Serialization API
// =============================================================================

// Marshal encodes s as indented JSON. Map keys are sorted, so equal
// snapshots always produce identical bytes.
func Marshal(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a snapshot from JSON bytes.
func Unmarshal(data []byte) (Snapshot, error) {
	return Read(bytes.NewReader(data))
}

// Write encodes s as indented JSON to w.
func Write(s Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(normalize(s)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode snapshot")
	}
	return nil
}

// Read decodes a JSON snapshot from r. The result is not reconciled.
func Read(r io.Reader) (Snapshot, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decode snapshot")
	}
	return normalize(s), nil
}

// WriteFile writes s to path with 0644 permissions.
func WriteFile(s Snapshot, path string) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", path)
	}
	return nil
}

// ReadFile reads a JSON snapshot from path.
func ReadFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
		}
		return Snapshot{}, errors.Wrap(errors.ErrCodeStorage, err, "open %s", path)
	}
	defer f.Close()
	return Read(f)
}

// Hash returns the SHA-256 of the snapshot's encoding.
func Hash(s Snapshot) string {
	data, err := Marshal(s)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// =============================================================================
// Internal Implementation
// =============================================================================

// normalize replaces nil collections so "layout" and "components" are always
// written as [] and {}.
func normalize(s Snapshot) Snapshot {
	if s.Layout == nil {
		s.Layout = grid.Layout{}
	}
	if s.Components == nil {
		s.Components = map[string]Component{}
	}
	return s
}
