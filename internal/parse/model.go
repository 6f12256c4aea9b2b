package parse

import (
	"fmt"
	"time"
)

const (
	// Sentinel is the user recorded for lines without a "Name: " prefix
	// (joins, leaves, subject changes, encryption notices).
	Sentinel = "group_notification"

	// Overall selects every user when filtering or summarizing.
	Overall = "Overall"
)

// RawEntry is one header match and the body that follows it, before any
// timestamp or sender parsing.
type RawEntry struct {
	Timestamp string
	Body      string
	Line      int // line of the header in the export, 1-based
}

// Message is one chat line with its derived calendar fields.
type Message struct {
	Seq        int       `json:"seq" yaml:"seq"`
	Line       int       `json:"line" yaml:"line"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	User       string    `json:"user" yaml:"user"`
	Text       string    `json:"message" yaml:"message"`
	OnlyDate   time.Time `json:"only_date" yaml:"only_date"`
	Year       int       `json:"year" yaml:"year"`
	MonthNum   int       `json:"month_num" yaml:"month_num"`
	Month      string    `json:"month" yaml:"month"`
	Day        int       `json:"day" yaml:"day"`
	DayName    string    `json:"day_name" yaml:"day_name"`
	Hour       int       `json:"hour" yaml:"hour"`
	Minute     int       `json:"minute" yaml:"minute"`
	TimePeriod string    `json:"time_period" yaml:"time_period"`
}

// IsNotification reports whether the message is a system line.
func (m Message) IsNotification() bool {
	return m.User == Sentinel
}

// NewMessage builds a Message and derives every calendar and bucket field
// from ts.
func NewMessage(seq, line int, ts time.Time, user, text string) Message {
	y, mo, d := ts.Date()
	return Message{
		Seq:        seq,
		Line:       line,
		Timestamp:  ts,
		User:       user,
		Text:       text,
		OnlyDate:   time.Date(y, mo, d, 0, 0, 0, 0, ts.Location()),
		Year:       y,
		MonthNum:   int(mo),
		Month:      mo.String(),
		Day:        d,
		DayName:    ts.Weekday().String(),
		Hour:       ts.Hour(),
		Minute:     ts.Minute(),
		TimePeriod: TimePeriod(ts.Hour()),
	}
}

// TimePeriod returns the hour bucket label used by the weekly heatmap.
// Hour 23 wraps to "23-00" and hour 0 is written "00-1".
func TimePeriod(hour int) string {
	switch hour {
	case 23:
		return "23-00"
	case 0:
		return "00-1"
	default:
		return fmt.Sprintf("%d-%d", hour, hour+1)
	}
}

// TimePeriods lists all 24 bucket labels in hour order.
func TimePeriods() []string {
	labels := make([]string, 24)
	for h := range labels {
		labels[h] = TimePeriod(h)
	}
	return labels
}
