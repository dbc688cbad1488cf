// Package jsonutil provides JSON helpers for slidefigs.
//
// Run metadata is stored as a JSON blob; these helpers read it back,
// diff it between runs, and write the render manifest to disk.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// MustMarshal marshals a value to JSON, panicking on error.
// Use only for values known to be marshalable (e.g., maps, slices).
func MustMarshal(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("jsonutil.MustMarshal: %v", err))
	}
	return string(b)
}

// WriteFile writes v as indented JSON to path. The data goes to a
// temporary file in the same directory first and is renamed into place,
// so readers never observe a half-written file.
func WriteFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}

// JSONDiff is one difference between two JSON objects.
type JSONDiff struct {
	Path     string `json:"path"`
	Type     string `json:"type"` // "add", "update", "delete"
	OldValue string `json:"old_value,omitempty"`
	NewValue string `json:"new_value,omitempty"`
}

// ComputeJSONDiff compares two JSON objects and returns the differences,
// sorted by path. Nested objects are compared key by key.
func ComputeJSONDiff(oldJSON, newJSON string) ([]JSONDiff, error) {
	oldMap, err := decodeObject(oldJSON)
	if err != nil {
		return nil, fmt.Errorf("parsing old JSON: %w", err)
	}
	newMap, err := decodeObject(newJSON)
	if err != nil {
		return nil, fmt.Errorf("parsing new JSON: %w", err)
	}
	return diffMaps("", oldMap, newMap, nil), nil
}

func decodeObject(s string) (map[string]interface{}, error) {
	m := make(map[string]interface{})
	if s == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	return m, nil
}

func diffMaps(prefix string, oldMap, newMap map[string]interface{}, diffs []JSONDiff) []JSONDiff {
	allKeys := make(map[string]bool)
	for k := range oldMap {
		allKeys[k] = true
	}
	for k := range newMap {
		allKeys[k] = true
	}

	keys := make([]string, 0, len(allKeys))
	for k := range allKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}

		oldVal, oldExists := oldMap[k]
		newVal, newExists := newMap[k]

		switch {
		case !oldExists && newExists:
			diffs = append(diffs, JSONDiff{Path: path, Type: "add", NewValue: toJSONStr(newVal)})
		case oldExists && !newExists:
			diffs = append(diffs, JSONDiff{Path: path, Type: "delete", OldValue: toJSONStr(oldVal)})
		default:
			oldStr, newStr := toJSONStr(oldVal), toJSONStr(newVal)
			if oldStr == newStr {
				continue
			}
			oldChild, oldIsMap := oldVal.(map[string]interface{})
			newChild, newIsMap := newVal.(map[string]interface{})
			if oldIsMap && newIsMap {
				diffs = diffMaps(path, oldChild, newChild, diffs)
				continue
			}
			diffs = append(diffs, JSONDiff{Path: path, Type: "update", OldValue: oldStr, NewValue: newStr})
		}
	}
	return diffs
}

func toJSONStr(v interface{}) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// TruncateString truncates s to maxLen runes, adding "..." if it was cut.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
