package search

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Zuo-Peng/chatlens/internal/index"
	"github.com/Zuo-Peng/chatlens/internal/scan"
)

const chat = "1/2/23, 10:00 AM - Alice: pizza tonight?\n" +
	"1/2/23, 10:05 AM - Bob: yes pizza is great\n" +
	"5/3/23, 9:00 PM - Alice: \u4f60\u597d\u4e16\u754c\n" +
	"6/3/23, 9:00 PM - Carol: see you\n"

func setup(t *testing.T) (*index.DB, string) {
	t.Helper()
	db, err := index.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	path := filepath.Join(t.TempDir(), "WhatsApp Chat with Group.txt")
	if err := os.WriteFile(path, []byte(chat), 0o644); err != nil {
		t.Fatal(err)
	}
	fi, err := scan.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := index.ImportFile(db, fi); err != nil {
		t.Fatal(err)
	}
	return db, fi.Key
}

func TestSearch(t *testing.T) {
	db, key := setup(t)

	tests := []struct {
		name    string
		opts    Options
		want    []int // seqs, any order
		wantErr bool
	}{
		{name: "fts", opts: Options{Query: "pizza"}, want: []int{0, 1}},
		{name: "user filter", opts: Options{Query: "pizza", User: "Bob"}, want: []int{1}},
		{name: "chat filter", opts: Options{Query: "pizza", Chat: "other"}, want: nil},
		{name: "since filter", opts: Options{Query: "see", Since: "2023-03-01"}, want: []int{3}},
		{name: "since excludes", opts: Options{Query: "pizza", Since: "2023-03-01"}, want: nil},
		{name: "cjk like", opts: Options{Query: "\u4e16\u754c"}, want: []int{2}},
		{name: "limit", opts: Options{Query: "pizza", Limit: 1}, want: []int{-1}},
		{name: "empty query", opts: Options{Query: "  "}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := Search(db, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Search() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(results) != len(tt.want) {
				t.Fatalf("Search() returned %d results, want %d", len(results), len(tt.want))
			}
			got := make(map[int]bool)
			for _, r := range results {
				got[r.Seq] = true
				if r.ChatKey != key || r.ChatName != "Group" {
					t.Errorf("result chat = %s/%s", r.ChatKey, r.ChatName)
				}
			}
			for _, seq := range tt.want {
				if seq >= 0 && !got[seq] {
					t.Errorf("missing seq %d in %+v", seq, results)
				}
			}
		})
	}
}

func TestSearch_Snippet(t *testing.T) {
	db, _ := setup(t)
	results, err := Search(db, Options{Query: "great"})
	if err != nil || len(results) != 1 {
		t.Fatalf("Search() = %v, %v", results, err)
	}
	if !strings.Contains(results[0].Snippet, ">>>great<<<") {
		t.Errorf("Snippet = %q", results[0].Snippet)
	}
}

func TestMakeSnippet(t *testing.T) {
	tests := []struct {
		name, text, query string
		context           int
		want              string
	}{
		{"short match", "hello world", "world", 30, "hello >>>world<<<"},
		{"trimmed both sides", "aaaaaaaa key bbbbbbbb", "key", 3, "...aa >>>key<<< bb..."},
		{"no match", "abcdef", "zz", 2, "abcd..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := makeSnippet(tt.text, tt.query, tt.context); got != tt.want {
				t.Errorf("makeSnippet() = %q, want %q", got, tt.want)
			}
		})
	}
}
