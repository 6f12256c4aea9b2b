package parse

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_TwoMessages(t *testing.T) {
	raw := "1/2/23, 10:00 AM - Alice: hello\n1/2/23, 10:05 AM - Bob: hi there\n"

	msgs, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("Parse() returned %d records, want 2", len(msgs))
	}

	want := []struct {
		user, text, period string
		hour, minute       int
	}{
		{"Alice", "hello\n", "10-11", 10, 0},
		{"Bob", "hi there\n", "10-11", 10, 5},
	}
	for i, w := range want {
		m := msgs[i]
		if m.User != w.user || m.Text != w.text {
			t.Errorf("msgs[%d] = (%q, %q), want (%q, %q)", i, m.User, m.Text, w.user, w.text)
		}
		if m.Hour != w.hour || m.Minute != w.minute || m.TimePeriod != w.period {
			t.Errorf("msgs[%d] time = %d:%d %s, want %d:%d %s", i, m.Hour, m.Minute, m.TimePeriod, w.hour, w.minute, w.period)
		}
		if m.Seq != i {
			t.Errorf("msgs[%d].Seq = %d", i, m.Seq)
		}
	}

	first := msgs[0]
	if !first.Timestamp.Equal(time.Date(2023, 2, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("Timestamp = %v, want 2023-02-01 10:00", first.Timestamp)
	}
	if first.Year != 2023 || first.MonthNum != 2 || first.Month != "February" || first.Day != 1 {
		t.Errorf("calendar fields = %d/%d/%s/%d", first.Year, first.MonthNum, first.Month, first.Day)
	}
	if first.DayName != "Wednesday" {
		t.Errorf("DayName = %q, want Wednesday", first.DayName)
	}
	if !first.OnlyDate.Equal(time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("OnlyDate = %v", first.OnlyDate)
	}
}

func TestParse_GroupNotification(t *testing.T) {
	msgs, err := Parse("2/2/23, 11:59 PM - Alice added Bob\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d records, want 1", len(msgs))
	}
	m := msgs[0]
	if m.User != Sentinel {
		t.Errorf("User = %q, want %q", m.User, Sentinel)
	}
	if m.Text != "Alice added Bob\n" {
		t.Errorf("Text = %q", m.Text)
	}
	if m.Hour != 23 || m.TimePeriod != "23-00" {
		t.Errorf("hour/period = %d %q, want 23 \"23-00\"", m.Hour, m.TimePeriod)
	}
	if !m.IsNotification() {
		t.Error("IsNotification() = false")
	}
}

func TestParse_MultilineAndPreamble(t *testing.T) {
	raw := "exported by someone\n" +
		"3/4/23, 12:15 AM - Carol: line one\nline two\n" +
		"3/4/23, 1:00 PM - Dave: done\n"

	msgs, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d records, want 2", len(msgs))
	}
	if msgs[0].Text != "line one\nline two\n" {
		t.Errorf("multi-line body = %q", msgs[0].Text)
	}
	if msgs[0].Hour != 0 || msgs[0].TimePeriod != "00-1" {
		t.Errorf("12:15 AM -> hour %d period %q", msgs[0].Hour, msgs[0].TimePeriod)
	}
	if msgs[1].Hour != 13 || msgs[1].TimePeriod != "13-14" {
		t.Errorf("1:00 PM -> hour %d period %q", msgs[1].Hour, msgs[1].TimePeriod)
	}
	if msgs[0].Line != 2 || msgs[1].Line != 4 {
		t.Errorf("lines = %d, %d, want 2, 4", msgs[0].Line, msgs[1].Line)
	}
}

func TestParse_NarrowNoBreakSpace(t *testing.T) {
	raw := "5/6/2023,\u202f9:07\u202fpm - Erin: hey\n"

	msgs, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d records, want 1", len(msgs))
	}
	want := time.Date(2023, 6, 5, 21, 7, 0, 0, time.UTC)
	if !msgs[0].Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", msgs[0].Timestamp, want)
	}
}

func TestParse_EmbeddedColon(t *testing.T) {
	msgs, err := Parse("1/1/23, 8:00 AM - Frank: note: bring snacks\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if msgs[0].User != "Frank" || msgs[0].Text != "note: bring snacks\n" {
		t.Errorf("got (%q, %q)", msgs[0].User, msgs[0].Text)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantHdr bool
	}{
		{name: "empty input", raw: "", wantHdr: true},
		{name: "no headers", raw: "just some text\nwithout dates\n", wantHdr: true},
		{name: "day out of range", raw: "32/1/23, 10:00 AM - A: x\n"},
		{name: "month out of range", raw: "1/13/23, 10:00 AM - A: x\n"},
		{name: "hour out of range", raw: "1/1/23, 13:00 PM - A: x\n"},
		{name: "hour zero", raw: "1/2/23, 0:30 AM - A: x\n"},
		{name: "hour zero padded", raw: "1/2/23, 00:30 PM - A: x\n"},
		{name: "three digit year", raw: "1/1/202, 10:00 AM - A: x\n"},
		{name: "one bad among good", raw: "1/1/23, 10:00 AM - A: x\n31/2/23, 10:00 AM - B: y\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, err := Parse(tt.raw)
			if err == nil {
				t.Fatalf("Parse() = %d records, want error", len(msgs))
			}
			if msgs != nil {
				t.Errorf("Parse() returned partial output with error")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not *ParseError", err)
			}
			if got := errors.Is(err, ErrNoHeaders); got != tt.wantHdr {
				t.Errorf("errors.Is(ErrNoHeaders) = %v, want %v", got, tt.wantHdr)
			}
		})
	}
}

func TestParse_CountMatchesHeaders(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString("7/8/22, 4:30 PM - ")
		if i%3 == 0 {
			b.WriteString("someone joined\n")
		} else {
			b.WriteString("User: message\n")
		}
	}
	raw := b.String()

	msgs, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if want := len(headerRe.FindAllString(raw, -1)); len(msgs) != want {
		t.Errorf("got %d records, want %d", len(msgs), want)
	}
	for i, m := range msgs {
		if m.Seq != i {
			t.Fatalf("record %d has Seq %d", i, m.Seq)
		}
		if (i%3 == 0) != m.IsNotification() {
			t.Errorf("record %d notification = %v", i, m.IsNotification())
		}
	}
}

func TestParse_Deterministic(t *testing.T) {
	raw := "1/2/23, 10:00 AM - Alice: hello\n2/2/23, 11:59 PM - Alice added Bob\n"
	a, err := Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("record %d differs between runs", i)
		}
	}
}

func TestTimePeriod(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, "00-1"},
		{1, "1-2"},
		{9, "9-10"},
		{10, "10-11"},
		{22, "22-23"},
		{23, "23-00"},
	}
	for _, tt := range tests {
		if got := TimePeriod(tt.hour); got != tt.want {
			t.Errorf("TimePeriod(%d) = %q, want %q", tt.hour, got, tt.want)
		}
	}

	seen := make(map[string]bool)
	for _, p := range TimePeriods() {
		if seen[p] {
			t.Errorf("duplicate label %q", p)
		}
		seen[p] = true
	}
	if len(seen) != 24 {
		t.Errorf("got %d labels, want 24", len(seen))
	}
}

func TestSplitSender(t *testing.T) {
	tests := []struct {
		body, user, text string
	}{
		{"Alice: hi\n", "Alice", "hi\n"},
		{"Alice added Bob\n", Sentinel, "Alice added Bob\n"},
		{"+1 555 0100: ok\n", "+1 555 0100", "ok\n"},
		{"time 10:30 works\n", Sentinel, "time 10:30 works\n"},
		{"Bob:\nmulti\n", "Bob", "multi\n"},
		{"Alice:\u00a0hi\n", "Alice", "hi\n"},
		{"Alice:\u202fhi\n", "Alice", "hi\n"},
	}
	for _, tt := range tests {
		user, text := SplitSender(tt.body)
		if user != tt.user || text != tt.text {
			t.Errorf("SplitSender(%q) = (%q, %q), want (%q, %q)", tt.body, user, text, tt.user, tt.text)
		}
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.txt")
	data := "\xef\xbb\xbf1/2/23, 10:00 AM - Alice: hello\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	msgs, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(msgs) != 1 || msgs[0].User != "Alice" {
		t.Errorf("ParseFile() = %+v", msgs)
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("ParseFile(missing) expected error")
	}
}
