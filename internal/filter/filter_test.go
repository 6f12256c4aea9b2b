package filter

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Zuo-Peng/chatlens/internal/parse"
)

const sample = "1/2/23, 10:00 AM - Alice: hello\n" +
	"1/2/23, 2:05 AM - Bob: up late\n" +
	"3/2/23, 9:00 AM - Alice added Carol\n" +
	"5/2/23, 11:00 PM - Carol: hi all\n"

func mustParse(t *testing.T) []parse.Message {
	t.Helper()
	msgs, err := parse.Parse(sample)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return msgs
}

func day(d int) time.Time {
	return time.Date(2023, 2, d, 0, 0, 0, 0, time.UTC)
}

func TestByUser(t *testing.T) {
	msgs := mustParse(t)

	tests := []struct {
		user string
		want int
	}{
		{parse.Overall, 4},
		{"Alice", 1},
		{"Carol", 1},
		{parse.Sentinel, 1},
		{"Nobody", 0},
	}
	for _, tt := range tests {
		if got := ByUser(msgs, tt.user); len(got) != tt.want {
			t.Errorf("ByUser(%q) = %d records, want %d", tt.user, len(got), tt.want)
		}
	}
}

func TestByUser_DoesNotAliasInput(t *testing.T) {
	msgs := mustParse(t)
	got := ByUser(msgs, parse.Overall)
	got[0].User = "changed"
	if msgs[0].User != "Alice" {
		t.Error("ByUser result shares storage with input")
	}
}

func TestByDateRange(t *testing.T) {
	msgs := mustParse(t)

	tests := []struct {
		name     string
		from, to time.Time
		want     int
	}{
		{"open both", time.Time{}, time.Time{}, 4},
		{"single day", day(1), day(1), 2},
		{"from only", day(3), time.Time{}, 2},
		{"to only", time.Time{}, day(3), 3},
		{"excludes all", day(10), day(20), 0},
		{"time of day ignored", day(5).Add(15 * time.Hour), day(5).Add(time.Hour), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ByDateRange(msgs, tt.from, tt.to); len(got) != tt.want {
				t.Errorf("ByDateRange() = %d records, want %d", len(got), tt.want)
			}
		})
	}
}

func TestUsers(t *testing.T) {
	msgs := mustParse(t)

	if got, want := Users(msgs), []string{"Alice", "Bob", "Carol"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Users() = %v, want %v", got, want)
	}
	if got := UserOptions(msgs); got[0] != parse.Overall || len(got) != 4 {
		t.Errorf("UserOptions() = %v", got)
	}
}

func TestAuthoredAndNight(t *testing.T) {
	msgs := mustParse(t)
	if got := Authored(msgs); len(got) != 3 {
		t.Errorf("Authored() = %d, want 3", len(got))
	}
	night := Night(msgs)
	if len(night) != 1 || night[0].User != "Bob" {
		t.Errorf("Night() = %+v", night)
	}
}

func TestDateBounds(t *testing.T) {
	msgs := mustParse(t)

	from, to, err := DateBounds(msgs)
	if err != nil {
		t.Fatalf("DateBounds() error = %v", err)
	}
	if !from.Equal(day(1)) || !to.Equal(day(5)) {
		t.Errorf("DateBounds() = %v..%v", from, to)
	}

	if _, _, err := DateBounds(nil); !errors.Is(err, ErrNoMessages) {
		t.Errorf("DateBounds(nil) error = %v, want ErrNoMessages", err)
	}
}

func TestClamp(t *testing.T) {
	msgs := mustParse(t)

	from, to, err := Clamp(msgs, time.Time{}, day(28))
	if err != nil {
		t.Fatal(err)
	}
	if !from.Equal(day(1)) || !to.Equal(day(5)) {
		t.Errorf("Clamp() = %v..%v", from, to)
	}

	from, to, _ = Clamp(msgs, day(2), day(3))
	if !from.Equal(day(2)) || !to.Equal(day(3)) {
		t.Errorf("Clamp() inner range = %v..%v", from, to)
	}
}
