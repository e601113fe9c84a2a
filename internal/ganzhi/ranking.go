package ganzhi

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultWindow is the number of days scored when the caller does not
// ask for a specific window.
const DefaultWindow = 30

// EventCategory describes a life-event favorability profile: relation
// keywords that earn a bonus and branches considered lucky for the
// event.
type EventCategory struct {
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	Branches []string `json:"branches"`
}

// EventCategories is the fixed catalog of supported event profiles.
var EventCategories = map[string]EventCategory{
	"wedding": {
		Key:      "wedding",
		Name:     "嫁娶",
		Keywords: []string{"财", "印"},
		Branches: []string{"卯", "午"},
	},
	"opening": {
		Key:      "opening",
		Name:     "开业",
		Keywords: []string{"财", "食"},
		Branches: []string{"寅", "辰"},
	},
	"travel": {
		Key:      "travel",
		Name:     "出行",
		Keywords: []string{"食", "印"},
		Branches: []string{"巳", "亥"},
	},
	"contract": {
		Key:      "contract",
		Name:     "签约",
		Keywords: []string{"印"},
		Branches: []string{"丑", "未"},
	},
	"moving": {
		Key:      "moving",
		Name:     "搬迁",
		Keywords: []string{"印", "食"},
		Branches: []string{"辰", "戌"},
	},
}

// EventCategoryByKey resolves an event key, reporting whether it is in
// the catalog.
func EventCategoryByKey(key string) (EventCategory, bool) {
	ec, ok := EventCategories[key]
	return ec, ok
}

// DayCandidate is one scored day in a ranking window. Candidates are
// computed fresh per query and never persisted.
type DayCandidate struct {
	Date     time.Time `json:"date"`
	Pillar   Pillar    `json:"pillar"`
	Relation string    `json:"relation"`
	Rating   Rating    `json:"rating"`
	Score    int       `json:"score"`
}

// Ranking partitions a scored window into the top three days and the
// following five (positions 4-8).
type Ranking struct {
	Top  []DayCandidate `json:"top"`
	Next []DayCandidate `json:"next"`
}

// RankDays scores every day in [start, start+window) against the
// reference day stem and event profile, then ranks by descending score.
// The sort is stable, so equal scores keep ascending date order.
//
// Scoring: favorable/neutral/unfavorable rate 2/1/0, plus 2 when the
// day's relation label contains any event keyword and 1 when the day's
// branch is in the event's favored set.
func RankDays(conv Converter, refStem string, event EventCategory, start time.Time, window int) (Ranking, error) {
	if window <= 0 {
		window = DefaultWindow
	}

	candidates := make([]DayCandidate, 0, window)
	for i := 0; i < window; i++ {
		date := start.AddDate(0, 0, i)

		c, err := conv.Convert(date.Year(), date.Month(), date.Day())
		if err != nil {
			return Ranking{}, fmt.Errorf("convert %s: %w", date.Format("2006-01-02"), err)
		}

		result := AnalyzeRelation(refStem, c.DayPillar.Stem)
		candidates = append(candidates, DayCandidate{
			Date:     date,
			Pillar:   c.DayPillar,
			Relation: result.Relation,
			Rating:   result.Rating,
			Score:    baseRatingScore(result.Rating) + eventBonus(event, result.Relation, c.DayPillar.Branch),
		})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Score > candidates[b].Score
	})

	return Ranking{
		Top:  head(candidates, 0, 3),
		Next: head(candidates, 3, 8),
	}, nil
}

func baseRatingScore(r Rating) int {
	switch r {
	case RatingFavorable:
		return 2
	case RatingNeutral:
		return 1
	default:
		return 0
	}
}

func eventBonus(event EventCategory, relation, branch string) int {
	bonus := 0
	for _, kw := range event.Keywords {
		if kw != "" && strings.Contains(relation, kw) {
			bonus += 2
			break
		}
	}
	if contains(event.Branches, branch) {
		bonus++
	}
	return bonus
}

func head(candidates []DayCandidate, from, to int) []DayCandidate {
	if from >= len(candidates) {
		return nil
	}
	if to > len(candidates) {
		to = len(candidates)
	}
	return candidates[from:to]
}
