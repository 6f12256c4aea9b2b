package analyze

import (
	"time"

	"github.com/Zuo-Peng/chatlens/internal/sentiment"
)

// Stats are the headline numbers of a selection.
type Stats struct {
	Messages int `json:"messages" yaml:"messages"`
	Words    int `json:"words" yaml:"words"`
	Media    int `json:"media" yaml:"media"`
	Links    int `json:"links" yaml:"links"`
}

// Count is one row of a value-count table.
type Count struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// UserShare is a user's share of authored messages, in percent.
type UserShare struct {
	User    string  `json:"user" yaml:"user"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// HourCount is the number of messages sent during one hour of the day.
type HourCount struct {
	Hour  int `json:"hour" yaml:"hour"`
	Count int `json:"count" yaml:"count"`
}

// TimelinePoint is one bucket of a monthly or daily timeline.
type TimelinePoint struct {
	Label string    `json:"label" yaml:"label"`
	Start time.Time `json:"start" yaml:"start"`
	Count int       `json:"count" yaml:"count"`
}

// Heatmap counts messages per weekday and hour bucket. Cells[d][p] belongs
// to Days[d] and Periods[p].
type Heatmap struct {
	Days    []string `json:"days" yaml:"days"`
	Periods []string `json:"periods" yaml:"periods"`
	Cells   [][]int  `json:"cells" yaml:"cells"`
}

// Max returns the largest cell value.
func (h Heatmap) Max() int {
	max := 0
	for _, row := range h.Cells {
		for _, v := range row {
			if v > max {
				max = v
			}
		}
	}
	return max
}

// SentimentTally counts messages per polarity class.
type SentimentTally struct {
	Positive int `json:"positive" yaml:"positive"`
	Negative int `json:"negative" yaml:"negative"`
	Neutral  int `json:"neutral" yaml:"neutral"`
}

// Get returns the count for one label.
func (s SentimentTally) Get(l sentiment.Label) int {
	switch l {
	case sentiment.Positive:
		return s.Positive
	case sentiment.Negative:
		return s.Negative
	default:
		return s.Neutral
	}
}

// Total is the number of classified messages.
func (s SentimentTally) Total() int {
	return s.Positive + s.Negative + s.Neutral
}

// Dominant is the label with the highest count. Ties resolve in the order
// Positive, Negative, Neutral.
func (s SentimentTally) Dominant() sentiment.Label {
	best := sentiment.Positive
	for _, l := range sentiment.Labels[1:] {
		if s.Get(l) > s.Get(best) {
			best = l
		}
	}
	return best
}

// Personality tags.
const (
	TagTalkative    = "\U0001F4E2 Most Talkative"
	TagLongMessages = "\U0001F4DD Long Message Sender"
	TagEmojiLover   = "\U0001F602 Emoji Lover"
	TagNightOwl     = "\u23F1 Night Owl"
)

// UserTags is the set of personality tags earned by one user.
type UserTags struct {
	User string   `json:"user" yaml:"user"`
	Tags []string `json:"tags" yaml:"tags"`
}

// Insights are the closing remarks of a report.
type Insights struct {
	DominantSentiment sentiment.Label `json:"dominant_sentiment" yaml:"dominant_sentiment"`
	BusiestDay        string          `json:"busiest_day" yaml:"busiest_day"`
	NightPercent      float64         `json:"night_percent" yaml:"night_percent"`
	TopUser           string          `json:"top_user,omitempty" yaml:"top_user,omitempty"`
	TopUserShare      float64         `json:"top_user_share,omitempty" yaml:"top_user_share,omitempty"`
}

// NightThreshold is the night share, in percent, above which the night
// activity remark is shown.
const NightThreshold = 10.0

// Summary bundles every aggregate for one user view of a chat.
type Summary struct {
	User          string          `json:"user" yaml:"user"`
	From          string          `json:"from" yaml:"from"`
	To            string          `json:"to" yaml:"to"`
	Stats         Stats           `json:"stats" yaml:"stats"`
	AvgLength     float64         `json:"avg_message_length" yaml:"avg_message_length"`
	BusyUsers     []Count         `json:"busy_users,omitempty" yaml:"busy_users,omitempty"`
	UserShares    []UserShare     `json:"user_shares,omitempty" yaml:"user_shares,omitempty"`
	ActiveHours   []HourCount     `json:"active_hours" yaml:"active_hours"`
	CommonWords   []Count         `json:"common_words" yaml:"common_words"`
	Emojis        []Count         `json:"emojis" yaml:"emojis"`
	Monthly       []TimelinePoint `json:"monthly_timeline" yaml:"monthly_timeline"`
	Daily         []TimelinePoint `json:"daily_timeline" yaml:"daily_timeline"`
	WeekActivity  []Count         `json:"week_activity" yaml:"week_activity"`
	MonthActivity []Count         `json:"month_activity" yaml:"month_activity"`
	Heatmap       Heatmap         `json:"heatmap" yaml:"heatmap"`
	Sentiment     SentimentTally  `json:"sentiment" yaml:"sentiment"`
	Personality   []UserTags      `json:"personality,omitempty" yaml:"personality,omitempty"`
	Insights      Insights        `json:"insights" yaml:"insights"`
}

// IsOverall reports whether the summary covers every user.
func (s *Summary) IsOverall() bool {
	return s.User == "" || s.User == overall
}
