// Package stopwords holds the words excluded from word-frequency tables.
package stopwords

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed stop_hinglish.txt
var defaultList string

// Set is a case-insensitive stop-word set. It is read-only after loading.
type Set struct {
	words map[string]bool
}

// New returns an empty set.
func New() *Set {
	return &Set{words: make(map[string]bool)}
}

// Default returns the embedded English and romanized Hindi list.
func Default() *Set {
	s := New()
	// the embedded list is known-good; read errors cannot occur on a strings.Reader
	_ = s.read(strings.NewReader(defaultList))
	return s
}

// Load reads one word per line from path. Blank lines and lines starting
// with # are skipped. An empty path yields Default().
func Load(path string) (*Set, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stop words %s: %w", path, err)
	}
	defer f.Close()

	s := New()
	if err := s.read(f); err != nil {
		return nil, fmt.Errorf("read stop words %s: %w", path, err)
	}
	return s, nil
}

func (s *Set) read(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s.words[strings.ToLower(line)] = true
	}
	return scanner.Err()
}

// Add inserts words into the set.
func (s *Set) Add(words ...string) {
	for _, w := range words {
		s.words[strings.ToLower(w)] = true
	}
}

// Contains reports whether word is a stop word.
func (s *Set) Contains(word string) bool {
	if s == nil {
		return false
	}
	return s.words[strings.ToLower(word)]
}

// Len returns the number of words in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}
