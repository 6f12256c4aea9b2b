// Package parse turns an exported chat log into ordered Message records.
package parse

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

// ws also admits the no-break spaces newer exports put around the time.
const ws = `[\s\x{00A0}\x{202F}]`

// headerRe matches the "D/M/YY, H:MM AM - " prefix that starts every entry.
var headerRe = regexp.MustCompile(
	`\d{1,2}/\d{1,2}/\d{2,4},` + ws + `\d{1,2}:\d{2}` + ws + `[APap][Mm]` + ws + `-` + ws,
)

// senderRe splits "Name: rest" on the first colon followed by whitespace.
var senderRe = regexp.MustCompile(`(?s)^(.+?):` + ws)

const (
	layoutShortYear = "2/1/06, 3:04 PM"
	layoutLongYear  = "2/1/2006, 3:04 PM"
)

// ErrNoHeaders is wrapped by ParseError when the input has no timestamp header.
var ErrNoHeaders = errors.New("no timestamp headers found")

// ParseError reports input that cannot be turned into records. No partial
// output accompanies it.
type ParseError struct {
	Line int    // 1-based line of the offending header, 0 if not tied to one
	Text string // the normalized timestamp text
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse chat: line %d: timestamp %q: %v", e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("parse chat: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Split cuts raw at every timestamp header. Text before the first header is
// dropped; multi-line bodies run until the next header.
func Split(raw string) []RawEntry {
	locs := headerRe.FindAllStringIndex(raw, -1)
	entries := make([]RawEntry, 0, len(locs))

	line := 1
	prev := 0
	for i, loc := range locs {
		line += strings.Count(raw[prev:loc[0]], "\n")
		prev = loc[0]

		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		entries = append(entries, RawEntry{
			Timestamp: raw[loc[0]:loc[1]],
			Body:      raw[loc[1]:end],
			Line:      line,
		})
	}
	return entries
}

// NormalizeTimestamp prepares header text for strict parsing.
func NormalizeTimestamp(s string) string {
	s = strings.ReplaceAll(s, "\u202f", " ")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.ReplaceAll(s, " -", "")
	return strings.ToUpper(strings.TrimSpace(s))
}

// ParseTimestamp parses a normalized header as day/month/year with a 12-hour
// clock. Two-digit years are taken as 20xx for 00-68 and 19xx otherwise.
// Hour 0 is rejected; a 12-hour clock runs 12, 1, ... 11.
func ParseTimestamp(s string) (time.Time, error) {
	date, clock, ok := strings.Cut(s, ",")
	if !ok {
		return time.Time{}, fmt.Errorf("missing date separator")
	}
	if h, _, ok := strings.Cut(strings.TrimSpace(clock), ":"); ok && strings.Trim(h, "0") == "" {
		return time.Time{}, fmt.Errorf("hour %q out of range", h)
	}
	layout := layoutLongYear
	if i := strings.LastIndex(date, "/"); i >= 0 && len(date)-i-1 == 2 {
		layout = layoutShortYear
	}
	return time.Parse(layout, s)
}

// SplitSender separates "Name: text" bodies. Bodies without the delimiter
// belong to Sentinel and keep their full text.
func SplitSender(body string) (user, text string) {
	loc := senderRe.FindStringSubmatchIndex(body)
	if loc == nil {
		return Sentinel, body
	}
	return body[loc[2]:loc[3]], body[loc[1]:]
}

// Parse converts an exported chat into one Message per header, in document
// order. A header whose timestamp does not parse fails the whole call.
func Parse(raw string) ([]Message, error) {
	entries := Split(raw)
	if len(entries) == 0 {
		return nil, &ParseError{Err: ErrNoHeaders}
	}

	msgs := make([]Message, 0, len(entries))
	for i, e := range entries {
		norm := NormalizeTimestamp(e.Timestamp)
		ts, err := ParseTimestamp(norm)
		if err != nil {
			return nil, &ParseError{Line: e.Line, Text: norm, Err: err}
		}
		user, text := SplitSender(e.Body)
		msgs = append(msgs, NewMessage(i, e.Line, ts, user, text))
	}
	return msgs, nil
}

// ParseFile reads a UTF-8 export from disk and parses it.
func ParseFile(path string) ([]Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	return Parse(string(data))
}
