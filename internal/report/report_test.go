package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Zuo-Peng/chatlens/internal/analyze"
	"github.com/Zuo-Peng/chatlens/internal/chart"
	"github.com/Zuo-Peng/chatlens/internal/parse"
)

const chat = "1/2/23, 10:00 AM - Alice: good morning \U0001F600\n" +
	"1/2/23, 10:05 AM - Bob: caf\u00e9 later?\n" +
	"2/2/23, 1:00 AM - Bob: still up\n" +
	"6/3/23, 9:00 PM - \u0905\u092e\u093f\u0924: ok\n"

func fixture(t *testing.T) (*analyze.Summary, []chart.Image) {
	t.Helper()
	return fixtureOf(t, chat)
}

func fixtureOf(t *testing.T, raw string) (*analyze.Summary, []chart.Image) {
	t.Helper()
	msgs, err := parse.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	s, err := analyze.New(analyze.Options{}).Summarize(msgs, parse.Overall)
	if err != nil {
		t.Fatal(err)
	}
	r, err := chart.NewRenderer("")
	if err != nil {
		t.Fatal(err)
	}
	images, err := r.All(s)
	if err != nil {
		t.Fatal(err)
	}
	return s, images
}

func TestWrite(t *testing.T) {
	s, images := fixture(t)

	var buf bytes.Buffer
	if err := Write(&buf, s, images, Options{}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.Bytes()
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header")
	}
	if !bytes.Contains(out, []byte("%%EOF")) {
		t.Errorf("output has no EOF marker")
	}

	var noImages bytes.Buffer
	if err := Write(&noImages, s, nil, Options{}); err != nil {
		t.Fatalf("Write(no images) error = %v", err)
	}
	if noImages.Len() >= buf.Len() {
		t.Errorf("report with charts (%d bytes) not larger than without (%d)", buf.Len(), noImages.Len())
	}
}

func TestWriteFile(t *testing.T) {
	s, images := fixture(t)
	path := filepath.Join(t.TempDir(), "report.pdf")

	if err := WriteFile(path, s, images, Options{}); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Errorf("report file missing or empty: %v", err)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the report in the output dir, found %d entries", len(entries))
	}
}

func TestWrite_MissingFont(t *testing.T) {
	s, _ := fixture(t)
	err := Write(&bytes.Buffer{}, s, nil, Options{FontPath: filepath.Join(t.TempDir(), "none.ttf")})
	if err == nil {
		t.Error("Write() with missing font expected error")
	}
}

func TestStripEmoji(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"\U0001F4E2 Most Talkative", "Most Talkative"},
		{"plain", "plain"},
		{"a \U0001F600 b", "a b"},
	}
	for _, tt := range tests {
		if got := stripEmoji(tt.in); got != tt.want {
			t.Errorf("stripEmoji(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWrite_SingleMonth(t *testing.T) {
	// every message in February: one monthly bucket, one weekday, one hour
	s, images := fixtureOf(t, "1/2/23, 10:00 AM - Alice: hi\n"+
		"5/2/23, 10:20 AM - Bob: hello\n"+
		"5/2/23, 10:40 AM - Alice: bye\n")

	var got []string
	for _, img := range images {
		got = append(got, img.Name)
	}
	for _, want := range []string{chart.MonthlyTimeline, chart.DailyTimeline, chart.Heatmap} {
		found := false
		for _, name := range got {
			found = found || name == want
		}
		if !found {
			t.Errorf("charts = %v, missing %s", got, want)
		}
	}

	var buf bytes.Buffer
	if err := Write(&buf, s, images, Options{}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("output does not start with a PDF header")
	}
}
