// Package dump serializes snapshot trees for inspection and golden-file tests.
package dump

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/axsnap/pkg/geometry"
	"github.com/go-drift/axsnap/pkg/snapshot"
)

// UpdateEnv names the environment variable that switches MatchesFile into
// update mode.
const UpdateEnv = "AXSNAP_UPDATE_SNAPSHOTS"

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot is the serialized form of one element tree.
type Snapshot struct {
	Generation string `json:"generation,omitempty"`
	Root       *Node  `json:"root"`
}

// Node represents an element in the serialized tree.
type Node struct {
	Attrs         map[string]any `json:"attrs"`
	Visible       bool           `json:"visible"`
	VisibleBounds string         `json:"visibleBounds"`
	Children      []*Node        `json:"children,omitempty"`
}

// Capture serializes the tree rooted at root. A nil root yields a snapshot
// with no root node.
func Capture(root *snapshot.Element) *Snapshot {
	snap := &Snapshot{}
	if root != nil {
		snap.Generation = root.Generation()
		snap.Root = captureNode(root)
	}
	return snap
}

func captureNode(e *snapshot.Element) *Node {
	n := &Node{
		Attrs:         make(map[string]any, e.Attributes().Len()),
		Visible:       e.IsVisibleToUser(),
		VisibleBounds: e.VisibleBounds().String(),
	}
	for key, v := range e.Attributes().All() {
		if r, ok := v.(geometry.Rect); ok {
			v = r.String()
		}
		n.Attrs[key.String()] = v
	}
	for _, child := range e.Children() {
		n.Children = append(n.Children, captureNode(child))
	}
	return n
}

// WriteJSON writes the snapshot as indented JSON.
func (s *Snapshot) WriteJSON(w io.Writer) error {
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteTree writes one line per element, indented by depth, listing the
// element's present attributes in declaration order.
//
//	android.widget.FrameLayout[0] bounds=[0,0][1080,1920] visible=[0,0][1080,1920]
//	  android.widget.Button[0] text="OK" clickable ...
func WriteTree(w io.Writer, root *snapshot.Element) error {
	if root == nil {
		return nil
	}
	var err error
	root.Walk(func(e *snapshot.Element) bool {
		if err != nil {
			return false
		}
		_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", e.Depth()), Line(e))
		return true
	})
	return err
}

// Line describes a single element the way WriteTree does, without
// indentation.
func Line(e *snapshot.Element) string {
	var b strings.Builder
	b.WriteString(e.String())
	for key, v := range e.Attributes().All() {
		switch key {
		case snapshot.AttrIndex, snapshot.AttrClass:
			continue
		}
		switch v := v.(type) {
		case bool:
			// Only true flags are worth a column.
			if v {
				fmt.Fprintf(&b, " %s", key)
			}
		case string:
			fmt.Fprintf(&b, " %s=%q", key, v)
		default:
			fmt.Fprintf(&b, " %s=%s", key, snapshot.FormatValue(v))
		}
	}
	if e.IsVisibleToUser() {
		fmt.Fprintf(&b, " visible=%s", e.VisibleBounds())
	} else {
		b.WriteString(" invisible")
	}
	return b.String()
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When AXSNAP_UPDATE_SNAPSHOTS=1
// is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to the given path, creating directories
// as needed. The generation id is not written.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s.withoutGeneration())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a line diff between this snapshot and other, ignoring
// generation ids. Returns empty string if equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := marshalSnapshot(s.withoutGeneration())
	b, _ := marshalSnapshot(other.withoutGeneration())
	if bytes.Equal(a, b) {
		return ""
	}
	return unifiedDiff(string(b), string(a))
}

// Load reads a snapshot previously written by UpdateFile or WriteJSON.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func (s *Snapshot) withoutGeneration() *Snapshot {
	return &Snapshot{Root: s.Root}
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unifiedDiff produces a simple line-oriented diff.
func unifiedDiff(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	var buf strings.Builder
	buf.WriteString("--- expected\n+++ actual\n")

	for i := range max(len(expectedLines), len(actualLines)) {
		var e, a string
		if i < len(expectedLines) {
			e = expectedLines[i]
		}
		if i < len(actualLines) {
			a = actualLines[i]
		}
		if e != a {
			if i < len(expectedLines) {
				fmt.Fprintf(&buf, "-%s\n", e)
			}
			if i < len(actualLines) {
				fmt.Fprintf(&buf, "+%s\n", a)
			}
		}
	}

	return buf.String()
}
