package searchdata

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds the headline metrics shown in the overview cards
type Summary struct {
	Records          int     `json:"records"`
	TotalClicks      float64 `json:"total_clicks"`
	TotalImpressions float64 `json:"total_impressions"`
	AverageCTR       float64 `json:"average_ctr"`
	AveragePosition  float64 `json:"average_position"`
	MedianPosition   float64 `json:"median_position"`
	WeightedPosition float64 `json:"weighted_position"` // impression-weighted
}

// Summarize computes totals and averages over records. An empty input yields
// a zero Summary.
func Summarize(records []Record) Summary {
	s := Summary{Records: len(records)}
	if len(records) == 0 {
		return s
	}

	ctrs := make(stats.Float64Data, len(records))
	positions := make(stats.Float64Data, len(records))
	impressions := make([]float64, len(records))
	for i, r := range records {
		s.TotalClicks += r.Clicks
		s.TotalImpressions += r.Impressions
		ctrs[i] = r.CTR
		positions[i] = r.Position
		impressions[i] = r.Impressions
	}

	s.AverageCTR, _ = ctrs.Mean()
	s.AveragePosition, _ = positions.Mean()
	s.MedianPosition, _ = positions.Median()

	if s.TotalImpressions > 0 {
		s.WeightedPosition = stat.Mean(positions, impressions)
	} else {
		s.WeightedPosition = s.AveragePosition
	}

	return s
}

// TopByClicks returns up to limit records of category ordered by clicks,
// then impressions, descending. Ties keep stored order.
func TopByClicks(records []Record, category Category, limit int) []Record {
	top := FilterByCategory(records, category)
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Clicks != top[j].Clicks {
			return top[i].Clicks > top[j].Clicks
		}
		return top[i].Impressions > top[j].Impressions
	})
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	return top
}

// Priority grades how urgent a ranking drop is
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Decline describes a query whose average position got worse between two periods
type Decline struct {
	Query            string   `json:"query"`
	PreviousPosition float64  `json:"previous_position"`
	CurrentPosition  float64  `json:"current_position"`
	Change           float64  `json:"change"` // previous - current, negative on a drop
	Clicks           float64  `json:"clicks"`
	Impressions      float64  `json:"impressions"`
	CTR              float64  `json:"ctr"`
	Priority         Priority `json:"priority"`
}

type queryAggregate struct {
	clicks      float64
	impressions float64
	positions   []float64
	weights     []float64
}

func (a *queryAggregate) position() float64 {
	if a.impressions > 0 {
		return stat.Mean(a.positions, a.weights)
	}
	mean, err := stats.Mean(a.positions)
	if err != nil {
		return 0
	}
	return mean
}

func aggregateQueries(records []Record) (map[string]*queryAggregate, []string) {
	byQuery := make(map[string]*queryAggregate)
	var order []string
	for _, r := range records {
		if r.Category != CategoryQuery || r.Key == "" {
			continue
		}
		agg, ok := byQuery[r.Key]
		if !ok {
			agg = &queryAggregate{}
			byQuery[r.Key] = agg
			order = append(order, r.Key)
		}
		agg.clicks += r.Clicks
		agg.impressions += r.Impressions
		agg.positions = append(agg.positions, r.Position)
		agg.weights = append(agg.weights, r.Impressions)
	}
	return byQuery, order
}

// Declining compares query positions between a previous and a current period
// and returns the queries that dropped, largest drop first.
func Declining(previous, current []Record) []Decline {
	prev, _ := aggregateQueries(previous)
	cur, order := aggregateQueries(current)

	declines := make([]Decline, 0)
	for _, query := range order {
		before, ok := prev[query]
		if !ok {
			continue
		}
		after := cur[query]

		prevPos := before.position()
		curPos := after.position()
		change := prevPos - curPos
		if change >= 0 {
			continue
		}

		d := Decline{
			Query:            query,
			PreviousPosition: round(prevPos, 1),
			CurrentPosition:  round(curPos, 1),
			Change:           round(change, 1),
			Clicks:           after.clicks,
			Impressions:      after.impressions,
			Priority:         priorityFor(change),
		}
		if after.impressions > 0 {
			d.CTR = after.clicks / after.impressions
		}
		declines = append(declines, d)
	}

	sort.SliceStable(declines, func(i, j int) bool {
		return declines[i].Change < declines[j].Change
	})
	return declines
}

// SplitByDate partitions dated records into those before pivot and those on
// or after it. Records without a date are dropped.
func SplitByDate(records []Record, pivot string) (before, after []Record) {
	for _, r := range records {
		if r.Date == "" {
			continue
		}
		if r.Date < pivot {
			before = append(before, r)
		} else {
			after = append(after, r)
		}
	}
	return before, after
}

func priorityFor(change float64) Priority {
	switch {
	case change < -5:
		return PriorityHigh
	case change < -3:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
