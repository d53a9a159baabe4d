package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFileReplacesAtomically(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	path := filepath.Join(dir, "out.json")
	for _, content := range []string{"first", "second"} {
		if err := SafeWriteFile(path, []byte(content)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "second" {
		t.Fatalf("content = %q", b)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "out.json" {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestWriteJSONCreatesParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "state.json")
	if err := WriteJSON(path, map[string]string{"k": "v"}); err != nil {
		t.Fatalf("write json: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "{\n  \"k\": \"v\"\n}" {
		t.Fatalf("json = %q", b)
	}
	if err := WriteJSON(path, func() {}); err == nil {
		t.Fatalf("expected marshal error")
	}
}

func TestPrettyJSON(t *testing.T) {
	b, err := PrettyJSON(map[string]int{"a": 1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "{\n  \"a\": 1\n}" {
		t.Fatalf("json = %q", b)
	}
}
