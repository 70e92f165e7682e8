// Package snapshot persists harvested snapshots as the json file the display layer reads.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"storefront-harvester/internal/catalog"
)

// Marshal renders the snapshot exactly as it is written to disk: 2 space indentation, a
// trailing newline and no html escaping ("&" stays "&").
func Marshal(s catalog.Snapshot) ([]byte, error) {
	if s.Items == nil {
		s.Items = []catalog.Product{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	err := enc.Encode(s)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile replaces the file at path with the snapshot, creating parent directories as
// needed. The previous file stays intact until the new one is fully written.
func WriteFile(path string, s catalog.Snapshot) error {
	data, err := Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(data)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	err = tmp.Close()
	if err != nil {
		return err
	}
	err = os.Chmod(tmp.Name(), 0644)
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadFile loads a previously written snapshot.
func ReadFile(path string) (catalog.Snapshot, error) {
	var s catalog.Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	err = json.Unmarshal(data, &s)
	if err != nil {
		return s, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}
