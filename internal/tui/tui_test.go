package tui

import (
	"strings"
	"testing"

	"github.com/Zuo-Peng/chatlens/internal/parse"
	"github.com/Zuo-Peng/chatlens/internal/search"
	tea "github.com/charmbracelet/bubbletea"
)

func testMessages(t *testing.T) []parse.Message {
	t.Helper()
	msgs, err := parse.Parse("1/2/23, 10:00 AM - Alice: good morning\n" +
		"1/2/23, 10:05 AM - Bob: hi there\n" +
		"2/2/23, 11:30 PM - Alice: see you\n" +
		"2/2/23, 11:45 PM - Alice added Carol\n")
	if err != nil {
		t.Fatal(err)
	}
	return msgs
}

func TestDashboardModel_Users(t *testing.T) {
	m := dashboardModel("Team", testMessages(t), DashboardOptions{})

	var got []string
	for _, it := range m.items {
		got = append(got, it.key+"="+it.detail)
	}
	want := "Overall=4 messages,Alice=2 messages,Bob=1 messages"
	if strings.Join(got, ",") != want {
		t.Errorf("items = %v, want %s", got, want)
	}
	if m.dash.ReportPath == "" || m.dash.Analyzer == nil {
		t.Errorf("defaults not applied: %+v", m.dash)
	}
}

func TestFilterUsers(t *testing.T) {
	m := dashboardModel("Team", testMessages(t), DashboardOptions{})

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Overall", "Alice", "Bob"}},
		{"ali", []string{"Overall", "Alice"}},
		{"  BOB ", []string{"Overall", "Bob"}},
		{"zed", []string{"Overall"}},
	}
	for _, tt := range tests {
		var got []string
		for _, it := range filterUsers(m.users, tt.query) {
			got = append(got, it.key)
		}
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("filterUsers(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestDashboard_PreviewFlow(t *testing.T) {
	var m tea.Model = dashboardModel("Team", testMessages(t), DashboardOptions{})

	m, cmd := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if cmd == nil {
		t.Fatal("resize did not schedule a preview")
	}
	msg := findPreview(t, cmd)
	if msg.err != nil || msg.key != "Overall" {
		t.Fatalf("preview = %q err %v", msg.key, msg.err)
	}
	if !strings.Contains(msg.content, "Top Statistics") {
		t.Errorf("preview content missing statistics:\n%s", msg.content)
	}

	m, _ = m.Update(msg)
	dm := m.(model)
	if dm.previewKey != "Overall" {
		t.Errorf("previewKey = %q", dm.previewKey)
	}
	if s := dm.currentSummary(); s == nil || s.Stats.Messages != 4 {
		t.Errorf("currentSummary() = %+v", s)
	}

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if dm := m.(model); dm.cursor != 1 {
		t.Errorf("cursor = %d after down", dm.cursor)
	}
	if msg := findPreview(t, cmd); msg.key != "Alice" {
		t.Errorf("preview after down = %q", msg.key)
	}

	// a stale render for another user is dropped
	m, _ = m.Update(previewRenderedMsg{key: "Bob", content: "stale"})
	if dm := m.(model); dm.previewKey == "Bob" {
		t.Error("stale preview applied")
	}
}

// findPreview runs cmd, unwrapping batches, and returns the preview message.
func findPreview(t *testing.T, cmd tea.Cmd) previewRenderedMsg {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case previewRenderedMsg:
			return msg
		case tea.BatchMsg:
			queue = append(queue, msg...)
		}
	}
	t.Fatal("no preview message produced")
	return previewRenderedMsg{}
}

func TestFormatItem(t *testing.T) {
	it := resultItem(search.Result{
		ChatKey:  "team-1234abcd",
		ChatName: "Team",
		Seq:      3,
		Ts:       "2023-02-01T10:00:00Z",
		User:     "Alice",
		Snippet:  "say >>>hello<<< there",
	})
	if it.tag != "02-01" || it.title != "Team / Alice" {
		t.Errorf("resultItem = %+v", it)
	}
	if previewCacheKey(it) != "team-1234abcd:3" {
		t.Errorf("previewCacheKey = %q", previewCacheKey(it))
	}

	lines := formatItem(it, 40, true)
	if len(lines) != linesPerItem {
		t.Fatalf("got %d lines", len(lines))
	}
	if strings.Contains(lines[1], ">>>") || !strings.Contains(lines[1], "say hello there") {
		t.Errorf("detail line = %q", lines[1])
	}
}

func TestAdjustListScroll(t *testing.T) {
	m := model{items: make([]item, 20)}
	m.cursor = 12
	m.adjustListScroll(10) // 5 visible items
	if m.listOffset != 8 {
		t.Errorf("listOffset = %d, want 8", m.listOffset)
	}
	m.cursor = 2
	m.adjustListScroll(10)
	if m.listOffset != 2 {
		t.Errorf("listOffset = %d, want 2", m.listOffset)
	}
}
