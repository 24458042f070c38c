package checklist

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDirIsRecursiveAndOrdered(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.md"), "# B\n- [ ] b1\n")
	writeFile(t, filepath.Join(dir, "a.md"), "# A\n- [x] a1\n")
	writeFile(t, filepath.Join(dir, "nested", "c.md"), "- [ ] c1\n")
	writeFile(t, filepath.Join(dir, "ignored.txt"), "- nope\n")

	docs, err := NewCodec().LoadDir(dir, "")
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	var titles []string
	for _, doc := range docs {
		titles = append(titles, doc.Title)
	}
	want := []string{"A", "B", "c"}
	if len(titles) != len(want) {
		t.Fatalf("titles = %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("titles = %v, want %v", titles, want)
		}
	}
}

func TestLoadDirFailsOnMalformedDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "good.md"), "- [ ] fine\n")
	writeFile(t, filepath.Join(dir, "bad.md"), "- no checkbox here\n")

	_, err := NewCodec().LoadDir(dir, ".md")
	if !errors.Is(err, ErrMalformedDocument) {
		t.Fatalf("expected malformed document error, got %v", err)
	}
}

func TestLoadMissingFileIsIOError(t *testing.T) {
	_, err := NewCodec().Load(filepath.Join(t.TempDir(), "missing.md"))
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected *IOError, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected wrapped not-exist error, got %v", err)
	}
}

func TestSaveOverwritesAndKeepsMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shopping.md")
	writeFile(t, path, "# Shopping\n- [ ] milk\n- [x] eggs\n")
	if err := os.Chmod(path, 0o600); err != nil {
		t.Fatal(err)
	}
	codec := NewCodec()
	doc, err := codec.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	doc.Toggle(doc.Items[0])
	if err := codec.Save(doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# Shopping\n- [x] milk\n- [x] eggs\n" {
		t.Fatalf("unexpected content %q", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", info.Mode().Perm())
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(entries))
	}
}

func TestSaveIntoMissingDirectoryFails(t *testing.T) {
	doc := &Document{Path: filepath.Join(t.TempDir(), "gone", "x.md"), Title: "x"}
	err := NewCodec().Save(doc)
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected *IOError, got %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
