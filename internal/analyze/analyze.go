// Package analyze computes the descriptive statistics shown by the
// dashboards and the PDF report. Every function takes an already filtered
// record slice and never modifies it.
package analyze

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"mvdan.cc/xurls/v2"

	"github.com/Zuo-Peng/chatlens/internal/emoji"
	"github.com/Zuo-Peng/chatlens/internal/filter"
	"github.com/Zuo-Peng/chatlens/internal/parse"
	"github.com/Zuo-Peng/chatlens/internal/sentiment"
	"github.com/Zuo-Peng/chatlens/internal/stopwords"
)

// ErrEmpty is returned by metrics that are undefined over zero messages,
// such as averages, shares and maxima.
var ErrEmpty = errors.New("no messages in selection")

const overall = parse.Overall

// DateLayout formats the date range line of reports.
const DateLayout = "02 Jan 2006"

// skipWordsRe drops placeholder lines from word statistics.
var skipWordsRe = regexp.MustCompile(`(?i)media omitted|edited`)

// Options configure an Analyzer. Zero values fall back to the defaults.
type Options struct {
	StopWords        *stopwords.Set
	Scorer           *sentiment.Scorer
	MediaPlaceholder string
	TopWords         int
}

// Analyzer computes aggregates with a fixed configuration.
type Analyzer struct {
	stop     *stopwords.Set
	scorer   *sentiment.Scorer
	media    string
	topWords int
	urls     *regexp.Regexp
}

// New returns an Analyzer for opts.
func New(opts Options) *Analyzer {
	a := &Analyzer{
		stop:     opts.StopWords,
		scorer:   opts.Scorer,
		media:    opts.MediaPlaceholder,
		topWords: opts.TopWords,
		urls:     xurls.Relaxed(),
	}
	if a.stop == nil {
		a.stop = stopwords.Default()
	}
	if a.scorer == nil {
		a.scorer = sentiment.New()
	}
	if a.media == "" {
		a.media = "<Media omitted>\n"
	}
	if a.topWords <= 0 {
		a.topWords = 20
	}
	return a
}

// Stats counts messages, whitespace-separated words, media placeholders
// and links.
func (a *Analyzer) Stats(msgs []parse.Message) Stats {
	s := Stats{Messages: len(msgs)}
	for _, m := range msgs {
		s.Words += len(strings.Fields(m.Text))
		if m.Text == a.media {
			s.Media++
		}
		s.Links += len(a.urls.FindAllString(m.Text, -1))
	}
	return s
}

// BusyUsers returns the five most active senders and every sender's share
// of authored messages. Group notifications are not counted.
func BusyUsers(msgs []parse.Message) ([]Count, []UserShare) {
	authored := filter.Authored(msgs)
	counts := valueCounts(authored, func(m parse.Message) string { return m.User })

	top := counts
	if len(top) > 5 {
		top = top[:5]
	}
	shares := make([]UserShare, 0, len(counts))
	for _, c := range counts {
		shares = append(shares, UserShare{
			User:    c.Label,
			Percent: round2(float64(c.Count) / float64(len(authored)) * 100),
		})
	}
	return top, shares
}

// AvgMessageLength is the mean length in characters of authored messages.
func AvgMessageLength(msgs []parse.Message) (float64, error) {
	authored := filter.Authored(msgs)
	if len(authored) == 0 {
		return 0, ErrEmpty
	}
	total := 0
	for _, m := range authored {
		total += utf8.RuneCountInString(m.Text)
	}
	return round2(float64(total) / float64(len(authored))), nil
}

// ActiveHours counts messages per hour of day, for hours that occur.
func ActiveHours(msgs []parse.Message) []HourCount {
	var byHour [24]int
	for _, m := range msgs {
		byHour[m.Hour]++
	}
	var out []HourCount
	for h, n := range byHour {
		if n > 0 {
			out = append(out, HourCount{Hour: h, Count: n})
		}
	}
	return out
}

// CommonWords returns the most frequent words of authored messages,
// skipping stop words and media/edited placeholders.
func (a *Analyzer) CommonWords(msgs []parse.Message) []Count {
	var words []string
	for _, m := range filter.Authored(msgs) {
		if skipWordsRe.MatchString(m.Text) {
			continue
		}
		for _, w := range strings.Fields(strings.ToLower(m.Text)) {
			if !a.stop.Contains(w) {
				words = append(words, w)
			}
		}
	}
	counts := countStrings(words)
	if len(counts) > a.topWords {
		counts = counts[:a.topWords]
	}
	return counts
}

// Emojis counts every emoji used, most frequent first.
func Emojis(msgs []parse.Message) []Count {
	var all []string
	for _, m := range msgs {
		all = append(all, emoji.List(m.Text)...)
	}
	return countStrings(all)
}

// MonthlyTimeline counts messages per calendar month, oldest first, labelled
// "Month-Year".
func MonthlyTimeline(msgs []parse.Message) []TimelinePoint {
	return timeline(msgs, func(m parse.Message) (time.Time, string) {
		start := time.Date(m.Year, time.Month(m.MonthNum), 1, 0, 0, 0, 0, time.UTC)
		return start, m.Month + "-" + strconv.Itoa(m.Year)
	})
}

// DailyTimeline counts messages per calendar date, oldest first.
func DailyTimeline(msgs []parse.Message) []TimelinePoint {
	return timeline(msgs, func(m parse.Message) (time.Time, string) {
		return m.OnlyDate, m.OnlyDate.Format("2006-01-02")
	})
}

// WeekActivity counts messages per weekday, busiest first.
func WeekActivity(msgs []parse.Message) []Count {
	return valueCounts(msgs, func(m parse.Message) string { return m.DayName })
}

// MonthActivity counts messages per month name, busiest first.
func MonthActivity(msgs []parse.Message) []Count {
	return valueCounts(msgs, func(m parse.Message) string { return m.Month })
}

// ActivityHeatmap counts messages per weekday and hour bucket. Only days and
// buckets that occur are included, in calendar and hour order.
func ActivityHeatmap(msgs []parse.Message) Heatmap {
	var grid [7][24]int
	var dayUsed [7]bool
	var hourUsed [24]bool
	for _, m := range msgs {
		d := (int(m.Timestamp.Weekday()) + 6) % 7 // Monday first
		grid[d][m.Hour]++
		dayUsed[d] = true
		hourUsed[m.Hour] = true
	}

	var h Heatmap
	var hours []int
	for hr, used := range hourUsed {
		if used {
			hours = append(hours, hr)
			h.Periods = append(h.Periods, parse.TimePeriod(hr))
		}
	}
	for d, used := range dayUsed {
		if !used {
			continue
		}
		h.Days = append(h.Days, time.Weekday((d+1)%7).String())
		row := make([]int, len(hours))
		for i, hr := range hours {
			row[i] = grid[d][hr]
		}
		h.Cells = append(h.Cells, row)
	}
	return h
}

// Sentiment classifies every message and tallies the labels.
func (a *Analyzer) Sentiment(msgs []parse.Message) SentimentTally {
	var t SentimentTally
	for _, m := range msgs {
		switch a.scorer.Classify(m.Text) {
		case sentiment.Positive:
			t.Positive++
		case sentiment.Negative:
			t.Negative++
		default:
			t.Neutral++
		}
	}
	return t
}

// Personality tags the users with the most messages, the longest average
// message, the most emojis and the most messages between midnight and 6am.
// Ties go to the user who appears first.
func Personality(msgs []parse.Message) ([]UserTags, error) {
	authored := filter.Authored(msgs)
	if len(authored) == 0 {
		return nil, ErrEmpty
	}

	var order []string
	count := make(map[string]int)
	length := make(map[string]int)
	emojis := make(map[string]int)
	for _, m := range authored {
		if _, ok := count[m.User]; !ok {
			order = append(order, m.User)
		}
		count[m.User]++
		length[m.User] += utf8.RuneCountInString(m.Text)
		emojis[m.User] += emoji.Count(m.Text)
	}

	var result []UserTags
	tag := func(user, t string) {
		for i := range result {
			if result[i].User == user {
				result[i].Tags = append(result[i].Tags, t)
				return
			}
		}
		result = append(result, UserTags{User: user, Tags: []string{t}})
	}

	tag(argmax(order, func(u string) float64 { return float64(count[u]) }), TagTalkative)
	tag(argmax(order, func(u string) float64 { return float64(length[u]) / float64(count[u]) }), TagLongMessages)
	tag(argmax(order, func(u string) float64 { return float64(emojis[u]) }), TagEmojiLover)

	if night := filter.Night(authored); len(night) > 0 {
		top := valueCounts(night, func(m parse.Message) string { return m.User })
		tag(top[0].Label, TagNightOwl)
	}
	return result, nil
}

func argmax(keys []string, score func(string) float64) string {
	best, bestScore := "", math.Inf(-1)
	for _, k := range keys {
		if s := score(k); s > bestScore {
			best, bestScore = k, s
		}
	}
	return best
}

// valueCounts counts key(m) over msgs, highest first; ties keep first-seen order.
func valueCounts(msgs []parse.Message, key func(parse.Message) string) []Count {
	keys := make([]string, len(msgs))
	for i, m := range msgs {
		keys[i] = key(m)
	}
	return countStrings(keys)
}

func countStrings(keys []string) []Count {
	idx := make(map[string]int)
	var out []Count
	for _, k := range keys {
		if i, ok := idx[k]; ok {
			out[i].Count++
			continue
		}
		idx[k] = len(out)
		out = append(out, Count{Label: k, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func timeline(msgs []parse.Message, bucket func(parse.Message) (time.Time, string)) []TimelinePoint {
	idx := make(map[time.Time]int)
	var out []TimelinePoint
	for _, m := range msgs {
		start, label := bucket(m)
		if i, ok := idx[start]; ok {
			out[i].Count++
			continue
		}
		idx[start] = len(out)
		out = append(out, TimelinePoint{Label: label, Start: start, Count: 1})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
