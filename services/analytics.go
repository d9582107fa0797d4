package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"hostel-complaint-api/models"
)

const (
	dailyTrendDays   = 30
	weeklyTrendWeeks = 12
	dateLayout       = "2006-01-02"
	week             = 7 * 24 * time.Hour
)

type StatusDistribution struct {
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
	Rejected   int `json:"rejected"`
	Total      int `json:"total"`
}

type DailyTrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type WeeklyTrendPoint struct {
	Week  int    `json:"week"`
	Label string `json:"label"`
	Start string `json:"start"`
	Count int    `json:"count"`
}

// ComplaintAnalytics is recomputed on every request and never stored.
type ComplaintAnalytics struct {
	StatusDistribution StatusDistribution `json:"statusDistribution"`
	AvgResolutionHours int                `json:"avgResolutionHours"`
	ResponseRate       int                `json:"responseRate"`
	DailyTrend         []DailyTrendPoint  `json:"dailyTrend"`
	WeeklyTrend        []WeeklyTrendPoint `json:"weeklyTrend"`
}

// AnalyticsSource is the read-only slice of ComplaintStore the aggregator needs.
type AnalyticsSource interface {
	ListForAnalytics(ctx context.Context) ([]models.Complaint, error)
}

type AnalyticsAggregator struct {
	source AnalyticsSource
	now    func() time.Time
}

func NewAnalyticsAggregator(source AnalyticsSource, now func() time.Time) *AnalyticsAggregator {
	if now == nil {
		now = time.Now
	}
	return &AnalyticsAggregator{source: source, now: now}
}

func (a *AnalyticsAggregator) Snapshot(ctx context.Context) (*ComplaintAnalytics, error) {
	rows, err := a.source.ListForAnalytics(ctx)
	if err != nil {
		return nil, dependencyError("load analytics", err)
	}
	result := BuildAnalytics(rows, a.now())
	return &result, nil
}

// BuildAnalytics derives every metric from rows as of now.
func BuildAnalytics(rows []models.Complaint, now time.Time) ComplaintAnalytics {
	dist := distribution(rows)
	return ComplaintAnalytics{
		StatusDistribution: dist,
		AvgResolutionHours: averageResolutionHours(rows),
		ResponseRate:       responseRate(dist),
		DailyTrend:         dailyTrend(rows, now),
		WeeklyTrend:        weeklyTrend(rows, now),
	}
}

func distribution(rows []models.Complaint) StatusDistribution {
	var d StatusDistribution
	for _, c := range rows {
		switch c.Status {
		case models.StatusOpen:
			d.Open++
		case models.StatusInProgress:
			d.InProgress++
		case models.StatusResolved:
			d.Resolved++
		case models.StatusRejected:
			d.Rejected++
		default:
			continue
		}
		d.Total++
	}
	return d
}

func responseRate(d StatusDistribution) int {
	if d.Total == 0 {
		return 0
	}
	responded := d.InProgress + d.Resolved + d.Rejected
	return int(math.Round(100 * float64(responded) / float64(d.Total)))
}

func averageResolutionHours(rows []models.Complaint) int {
	var total time.Duration
	resolved := 0
	for i := range rows {
		c := &rows[i]
		if c.Status != models.StatusResolved {
			continue
		}
		resolvedAt, ok := c.LastResolvedAt()
		if !ok {
			resolvedAt = c.UpdatedAt
		}
		total += resolvedAt.Sub(c.CreatedAt)
		resolved++
	}
	if resolved == 0 {
		return 0
	}
	return int(math.Round(total.Hours() / float64(resolved)))
}

func dailyTrend(rows []models.Complaint, now time.Time) []DailyTrendPoint {
	today := now.UTC().Truncate(24 * time.Hour)
	first := today.AddDate(0, 0, -(dailyTrendDays - 1))

	points := make([]DailyTrendPoint, dailyTrendDays)
	index := make(map[string]int, dailyTrendDays)
	for i := range points {
		date := first.AddDate(0, 0, i).Format(dateLayout)
		points[i] = DailyTrendPoint{Date: date}
		index[date] = i
	}

	for _, c := range rows {
		if i, ok := index[c.CreatedAt.UTC().Format(dateLayout)]; ok {
			points[i].Count++
		}
	}
	return points
}

// weeklyTrend buckets by whole weeks back from now, so the newest bucket ends now.
func weeklyTrend(rows []models.Complaint, now time.Time) []WeeklyTrendPoint {
	points := make([]WeeklyTrendPoint, weeklyTrendWeeks)
	for i := range points {
		weeksBack := weeklyTrendWeeks - i
		points[i] = WeeklyTrendPoint{
			Week:  i + 1,
			Label: fmt.Sprintf("W%d", i+1),
			Start: now.Add(-time.Duration(weeksBack) * week).UTC().Format(dateLayout),
		}
	}

	for _, c := range rows {
		age := now.Sub(c.CreatedAt)
		if age < 0 {
			continue
		}
		bucket := int(age / week)
		if bucket >= weeklyTrendWeeks {
			continue
		}
		points[weeklyTrendWeeks-1-bucket].Count++
	}
	return points
}
