package analyze

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Zuo-Peng/chatlens/internal/filter"
	"github.com/Zuo-Peng/chatlens/internal/parse"
)

// Insights derives the closing remarks for msgs. The top user line is only
// filled for the all-users view.
func (a *Analyzer) Insights(msgs []parse.Message, user string) (Insights, error) {
	if len(msgs) == 0 {
		return Insights{}, ErrEmpty
	}
	in := Insights{
		DominantSentiment: a.Sentiment(msgs).Dominant(),
		NightPercent:      round2(float64(len(filter.Night(msgs))) / float64(len(msgs)) * 100),
	}
	if week := WeekActivity(msgs); len(week) > 0 {
		in.BusiestDay = week[0].Label
	}
	if user == "" || user == overall {
		if top, shares := BusyUsers(msgs); len(top) > 0 {
			in.TopUser = top[0].Label
			in.TopUserShare = shares[0].Percent
		}
	}
	return in, nil
}

// Summarize computes every aggregate for user over msgs, which may already
// be narrowed to a date range. Personality tags compare users, so they are
// taken over msgs as a whole.
func (a *Analyzer) Summarize(msgs []parse.Message, user string) (*Summary, error) {
	if user == "" {
		user = overall
	}
	sel := filter.ByUser(msgs, user)
	if len(sel) == 0 {
		return nil, ErrEmpty
	}
	from, to, err := filter.DateBounds(sel)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		User:          user,
		From:          from.Format(DateLayout),
		To:            to.Format(DateLayout),
		Stats:         a.Stats(sel),
		ActiveHours:   ActiveHours(sel),
		CommonWords:   a.CommonWords(sel),
		Emojis:        Emojis(sel),
		Monthly:       MonthlyTimeline(sel),
		Daily:         DailyTimeline(sel),
		WeekActivity:  WeekActivity(sel),
		MonthActivity: MonthActivity(sel),
		Heatmap:       ActivityHeatmap(sel),
		Sentiment:     a.Sentiment(sel),
	}
	if s.IsOverall() {
		s.BusyUsers, s.UserShares = BusyUsers(sel)
	}

	if s.AvgLength, err = AvgMessageLength(sel); err != nil && !errors.Is(err, ErrEmpty) {
		return nil, err
	}
	if s.Personality, err = Personality(msgs); err != nil && !errors.Is(err, ErrEmpty) {
		return nil, err
	}
	if s.Insights, err = a.Insights(sel, user); err != nil {
		return nil, err
	}
	return s, nil
}

// Lines renders the insights as the bullet sentences closing a report.
func (in Insights) Lines() []string {
	lines := []string{
		fmt.Sprintf("Overall chat sentiment is %s.", in.DominantSentiment),
		fmt.Sprintf("Most conversations happen on %s.", in.BusiestDay),
	}
	if in.NightPercent > NightThreshold {
		lines = append(lines, fmt.Sprintf("%s%% of messages are sent late at night.", formatFloat(in.NightPercent)))
	}
	if in.TopUser != "" {
		lines = append(lines, fmt.Sprintf("%s contributes %s%% of total messages.", in.TopUser, formatFloat(in.TopUserShare)))
	}
	return lines
}

// formatFloat prints at most two decimals without trailing zeros.
func formatFloat(f float64) string {
	return strconv.FormatFloat(round2(f), 'f', -1, 64)
}
