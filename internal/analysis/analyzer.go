// Package analysis computes a deterministic digest of the cached public
// timeline: who posts, how much media they attach and how fast the
// timeline is moving. Everything is plain arithmetic over the local cache;
// no network access is involved.
package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Mr-Dark-debug/yatter/internal/model"
	"github.com/Mr-Dark-debug/yatter/pkg/timeutil"
)

// TimelineReader reads the cached timeline.
type TimelineReader interface {
	LoadTimeline(ctx context.Context, limit int) ([]model.Status, error)
}

// Analyzer produces timeline digests.
type Analyzer struct {
	timeline TimelineReader
	now      func() time.Time
}

// NewAnalyzer creates an analyzer over the given cache.
func NewAnalyzer(timeline TimelineReader) *Analyzer {
	return &Analyzer{timeline: timeline, now: time.Now}
}

// ============================================================
// Author statistics
// ============================================================

// AuthorStat summarises one author's activity on the timeline.
type AuthorStat struct {
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	Posts       int     `json:"posts"`
	Media       int     `json:"media"`
	Share       float64 `json:"share"` // Percentage of all posts
}

// ProlificAuthor is an author posting well above the timeline average.
type ProlificAuthor struct {
	Username string  `json:"username"`
	Posts    int     `json:"posts"`
	ZScore   float64 `json:"z_score"`
	Severity string  `json:"severity"` // "low", "medium", "high"
}

// authorStats counts posts and media per author, most active first.
// Ties are broken by username so output is stable.
func authorStats(statuses []model.Status) []AuthorStat {
	index := make(map[string]int)
	var stats []AuthorStat
	for _, s := range statuses {
		i, ok := index[s.Account.Username]
		if !ok {
			i = len(stats)
			index[s.Account.Username] = i
			stats = append(stats, AuthorStat{
				Username:    s.Account.Username,
				DisplayName: s.Account.DisplayName,
			})
		}
		stats[i].Posts++
		stats[i].Media += len(s.MediaAttachments)
	}

	total := float64(len(statuses))
	for i := range stats {
		stats[i].Share = math.Round(float64(stats[i].Posts)/total*10000) / 100
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Posts != stats[j].Posts {
			return stats[i].Posts > stats[j].Posts
		}
		return stats[i].Username < stats[j].Username
	})
	return stats
}

// detectProlificAuthors flags authors whose post count has a Z-score above
// 1.5 across all authors. Above 2.0 is "medium", above 3.0 is "high".
func detectProlificAuthors(stats []AuthorStat) []ProlificAuthor {
	if len(stats) < 2 {
		return nil
	}

	var sum, sumSq float64
	for _, s := range stats {
		p := float64(s.Posts)
		sum += p
		sumSq += p * p
	}
	n := float64(len(stats))
	mean := sum / n
	stddev := math.Sqrt(sumSq/n - mean*mean)
	if stddev == 0 {
		return nil
	}

	var out []ProlificAuthor
	for _, s := range stats {
		z := (float64(s.Posts) - mean) / stddev
		if z <= 1.5 {
			continue
		}
		severity := "low"
		if z > 3.0 {
			severity = "high"
		} else if z > 2.0 {
			severity = "medium"
		}
		out = append(out, ProlificAuthor{
			Username: s.Username,
			Posts:    s.Posts,
			ZScore:   math.Round(z*100) / 100,
			Severity: severity,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ZScore > out[j].ZScore })
	return out
}

// ============================================================
// Posting rate
// ============================================================

// ActivityTrend is a least-squares fit of cumulative posts over time.
type ActivityTrend struct {
	Span          time.Duration `json:"span"`
	PostsPerHour  float64       `json:"posts_per_hour"`
	RSquared      float64       `json:"r_squared"`
	TimedStatuses int           `json:"timed_statuses"`
}

// dataPoint is one observation for the regression.
type dataPoint struct {
	hours float64 // Hours since the oldest status
	count float64 // Cumulative posts
}

// activityTrend fits cumulative post count against creation time.
// Statuses without a timestamp are ignored.
func activityTrend(statuses []model.Status) ActivityTrend {
	var times []time.Time
	for _, s := range statuses {
		if !s.CreatedAt.IsZero() {
			times = append(times, s.CreatedAt)
		}
	}
	trend := ActivityTrend{TimedStatuses: len(times)}
	if len(times) < 2 {
		return trend
	}

	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	base := times[0]
	trend.Span = times[len(times)-1].Sub(base)

	points := make([]dataPoint, len(times))
	for i, t := range times {
		points[i] = dataPoint{hours: t.Sub(base).Hours(), count: float64(i + 1)}
	}

	slope, _, rSquared := linearRegression(points)
	trend.PostsPerHour = math.Round(slope*100) / 100
	trend.RSquared = math.Round(rSquared*1000) / 1000
	return trend
}

// linearRegression computes ordinary least squares regression.
// Returns slope (m), intercept (b), and R-squared goodness of fit.
func linearRegression(points []dataPoint) (slope, intercept, rSquared float64) {
	n := float64(len(points))
	if n < 2 {
		return 0, 0, 0
	}

	var sumX, sumY, sumXY, sumX2 float64
	for _, p := range points {
		sumX += p.hours
		sumY += p.count
		sumXY += p.hours * p.count
		sumX2 += p.hours * p.hours
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, sumY / n, 0
	}

	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssRes, ssTot float64
	for _, p := range points {
		predicted := slope*p.hours + intercept
		ssRes += (p.count - predicted) * (p.count - predicted)
		ssTot += (p.count - meanY) * (p.count - meanY)
	}

	if ssTot == 0 {
		rSquared = 1.0
	} else {
		rSquared = 1 - ssRes/ssTot
	}

	return slope, intercept, rSquared
}

// ============================================================
// Digest
// ============================================================

// Digest is the output of `yatterctl analyze`.
type Digest struct {
	GeneratedAt       string           `json:"generated_at"`
	Statuses          int              `json:"statuses"`
	Authors           []AuthorStat     `json:"authors"`
	ProlificAuthors   []ProlificAuthor `json:"prolific_authors"`
	TotalMedia        int              `json:"total_media"`
	StatusesWithMedia int              `json:"statuses_with_media"`
	MediaRatio        float64          `json:"media_ratio"` // Percentage of statuses with media
	Activity          ActivityTrend    `json:"activity"`
	Warnings          []string         `json:"warnings"`
}

// Digest analyses up to limit cached statuses.
func (a *Analyzer) Digest(ctx context.Context, limit int) (*Digest, error) {
	statuses, err := a.timeline.LoadTimeline(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("loading timeline for digest: %w", err)
	}

	d := &Digest{
		GeneratedAt: a.now().Format(time.RFC3339),
		Statuses:    len(statuses),
	}
	if len(statuses) == 0 {
		d.Warnings = append(d.Warnings, "The timeline cache is empty. Run `yatterctl timeline` or yatter-sync first.")
		return d, nil
	}

	for _, s := range statuses {
		if n := len(s.MediaAttachments); n > 0 {
			d.TotalMedia += n
			d.StatusesWithMedia++
		}
	}
	d.MediaRatio = math.Round(float64(d.StatusesWithMedia)/float64(len(statuses))*10000) / 100

	d.Authors = authorStats(statuses)
	d.ProlificAuthors = detectProlificAuthors(d.Authors)
	d.Activity = activityTrend(statuses)

	for _, p := range d.ProlificAuthors {
		if p.Severity == "high" {
			d.Warnings = append(d.Warnings,
				fmt.Sprintf("@%s dominates the timeline with %d posts (Z-score: %.2f).", p.Username, p.Posts, p.ZScore))
		}
	}
	if d.Activity.TimedStatuses < len(statuses) {
		d.Warnings = append(d.Warnings,
			fmt.Sprintf("%d statuses have no timestamp and were left out of the activity fit.",
				len(statuses)-d.Activity.TimedStatuses))
	}

	return d, nil
}

// FormatReport renders a digest as markdown.
func (a *Analyzer) FormatReport(d *Digest) string {
	var b strings.Builder

	b.WriteString("# Yatter Timeline Digest\n\n")
	b.WriteString(fmt.Sprintf("**Generated:** %s\n\n", d.GeneratedAt))

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	b.WriteString(fmt.Sprintf("| Statuses | %d |\n", d.Statuses))
	b.WriteString(fmt.Sprintf("| Authors | %d |\n", len(d.Authors)))
	b.WriteString(fmt.Sprintf("| Media Attachments | %d |\n", d.TotalMedia))
	b.WriteString(fmt.Sprintf("| Statuses With Media | %d (%.1f%%) |\n", d.StatusesWithMedia, d.MediaRatio))
	if d.Activity.TimedStatuses >= 2 {
		b.WriteString(fmt.Sprintf("| Time Span | %s |\n", timeutil.FormatDuration(d.Activity.Span)))
		b.WriteString(fmt.Sprintf("| Posts / Hour | %.2f (R² %.3f) |\n", d.Activity.PostsPerHour, d.Activity.RSquared))
	}
	b.WriteString("\n")

	if len(d.Authors) > 0 {
		b.WriteString("## Authors\n\n")
		b.WriteString("| Author | Posts | Media | Share |\n")
		b.WriteString("|--------|-------|-------|-------|\n")
		for _, s := range d.Authors {
			name := "@" + s.Username
			if s.DisplayName != "" {
				name = s.DisplayName + " " + name
			}
			b.WriteString(fmt.Sprintf("| %s | %d | %d | %.1f%% |\n", name, s.Posts, s.Media, s.Share))
		}
		b.WriteString("\n")
	}

	if len(d.ProlificAuthors) > 0 {
		b.WriteString("## Prolific Authors\n\n")
		b.WriteString("| Author | Posts | Z-Score | Severity |\n")
		b.WriteString("|--------|-------|---------|----------|\n")
		for _, p := range d.ProlificAuthors {
			b.WriteString(fmt.Sprintf("| @%s | %d | %.2f | %s |\n", p.Username, p.Posts, p.ZScore, p.Severity))
		}
		b.WriteString("\n")
	}

	if len(d.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range d.Warnings {
			b.WriteString(fmt.Sprintf("- %s\n", w))
		}
	}

	return b.String()
}
