package scan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("1/1/23, 10:00 AM - A: hi\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanRoot(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "WhatsApp Chat with Alice.txt"))
	touch(t, filepath.Join(root, "2023", "family", "WhatsApp Chat with Family.txt"))
	touch(t, filepath.Join(root, "notes.md"))

	files, err := ScanRoot(root)
	if err != nil {
		t.Fatalf("ScanRoot() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("ScanRoot() found %d files, want 2", len(files))
	}
	for _, f := range files {
		if !filepath.IsAbs(f.Path) || f.Size == 0 || f.Mtime == 0 {
			t.Errorf("incomplete FileInfo %+v", f)
		}
		if strings.HasPrefix(f.Name, "WhatsApp") {
			t.Errorf("Name %q keeps the export prefix", f.Name)
		}
	}

	none, err := ScanRoot(filepath.Join(root, "missing"))
	if err != nil || len(none) != 0 {
		t.Errorf("ScanRoot(missing) = %v, %v", none, err)
	}
}

func TestExpand(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.txt")
	b := filepath.Join(root, "sub", "b.txt")
	touch(t, a)
	touch(t, b)

	tests := []struct {
		name    string
		args    []string
		want    int
		wantErr bool
	}{
		{name: "single file", args: []string{a}, want: 1},
		{name: "directory", args: []string{root}, want: 2},
		{name: "glob", args: []string{filepath.Join(root, "**", "*.txt")}, want: 2},
		{name: "duplicates collapse", args: []string{a, root}, want: 2},
		{name: "missing file", args: []string{filepath.Join(root, "nope.txt")}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := Expand(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expand() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(files) != tt.want {
				t.Errorf("Expand() returned %d files, want %d", len(files), tt.want)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	root := "/exports"
	tests := []struct {
		path string
		want bool
	}{
		{"/exports/a.txt", true},
		{"/exports/x/y/b.txt", true},
		{"/exports/a.zip", false},
		{"/elsewhere/a.txt", false},
	}
	for _, tt := range tests {
		if got := Match(root, filepath.FromSlash(tt.path)); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestChatKey(t *testing.T) {
	k1 := ChatKey("/a/WhatsApp Chat with Bob & Co.txt")
	k2 := ChatKey("/b/WhatsApp Chat with Bob & Co.txt")

	if !strings.HasPrefix(k1, "bob-co-") {
		t.Errorf("ChatKey() = %q, want bob-co- prefix", k1)
	}
	if k1 == k2 {
		t.Error("different paths produced the same key")
	}
	if k1 != ChatKey("/a/WhatsApp Chat with Bob & Co.txt") {
		t.Error("ChatKey() is not stable")
	}
	if got := ChatKey("/x/!!!.txt"); !strings.HasPrefix(got, "chat-") {
		t.Errorf("ChatKey(punctuation) = %q", got)
	}
}
