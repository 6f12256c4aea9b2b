// Package filter narrows a parsed chat without touching the input slice.
package filter

import (
	"errors"
	"sort"
	"time"

	"github.com/Zuo-Peng/chatlens/internal/parse"
)

// ErrNoMessages is returned when bounds are requested over zero records.
var ErrNoMessages = errors.New("no messages")

// ByUser returns the messages sent by user. parse.Overall keeps everyone.
func ByUser(msgs []parse.Message, user string) []parse.Message {
	out := make([]parse.Message, 0, len(msgs))
	for _, m := range msgs {
		if user == parse.Overall || user == "" || m.User == user {
			out = append(out, m)
		}
	}
	return out
}

// ByDateRange keeps messages whose calendar date falls in [from, to].
// A zero bound leaves that side open.
func ByDateRange(msgs []parse.Message, from, to time.Time) []parse.Message {
	from, to = truncate(from), truncate(to)
	out := make([]parse.Message, 0, len(msgs))
	for _, m := range msgs {
		if !from.IsZero() && m.OnlyDate.Before(from) {
			continue
		}
		if !to.IsZero() && m.OnlyDate.After(to) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Authored drops group notifications.
func Authored(msgs []parse.Message) []parse.Message {
	out := make([]parse.Message, 0, len(msgs))
	for _, m := range msgs {
		if !m.IsNotification() {
			out = append(out, m)
		}
	}
	return out
}

// Night keeps messages sent between 00:00 and 05:59.
func Night(msgs []parse.Message) []parse.Message {
	out := make([]parse.Message, 0)
	for _, m := range msgs {
		if m.Hour >= 0 && m.Hour <= 5 {
			out = append(out, m)
		}
	}
	return out
}

// Users lists the distinct senders, sorted, without the notification sentinel.
func Users(msgs []parse.Message) []string {
	seen := make(map[string]struct{})
	var users []string
	for _, m := range msgs {
		if m.IsNotification() {
			continue
		}
		if _, ok := seen[m.User]; ok {
			continue
		}
		seen[m.User] = struct{}{}
		users = append(users, m.User)
	}
	sort.Strings(users)
	return users
}

// UserOptions is Users with parse.Overall in front, the selection list shown
// by the dashboards.
func UserOptions(msgs []parse.Message) []string {
	return append([]string{parse.Overall}, Users(msgs)...)
}

// DateBounds returns the first and last calendar date present.
func DateBounds(msgs []parse.Message) (from, to time.Time, err error) {
	if len(msgs) == 0 {
		return time.Time{}, time.Time{}, ErrNoMessages
	}
	from, to = msgs[0].OnlyDate, msgs[0].OnlyDate
	for _, m := range msgs[1:] {
		if m.OnlyDate.Before(from) {
			from = m.OnlyDate
		}
		if m.OnlyDate.After(to) {
			to = m.OnlyDate
		}
	}
	return from, to, nil
}

// Clamp restricts a requested range to the chat's own bounds, the way the
// date picker is limited to the first and last day of the export.
func Clamp(msgs []parse.Message, from, to time.Time) (time.Time, time.Time, error) {
	lo, hi, err := DateBounds(msgs)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	from, to = truncate(from), truncate(to)
	if from.IsZero() || from.Before(lo) {
		from = lo
	}
	if to.IsZero() || to.After(hi) {
		to = hi
	}
	return from, to, nil
}

func truncate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
