package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/toggle-corp/chrono-server/internal/model"
	"github.com/toggle-corp/chrono-server/internal/timeutil"
)

// ReportService builds human-readable summaries for the weekly digest.
type ReportService struct {
	summaries *SummaryService
}

func NewReportService(summaries *SummaryService) *ReportService {
	return &ReportService{summaries: summaries}
}

// WeeklyDigest renders the user's week (relative to now) as an HTML message.
func (s *ReportService) WeeklyDigest(ctx context.Context, user model.User, now time.Time) (string, error) {
	summary, err := s.summaries.WeeklySummary(ctx, user.ID, now)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString(s.RenderSummary("Weekly report", summary))

	ranking, err := s.summaries.MostActiveProject(ctx, user.ID, now)
	if err != nil {
		return "", err
	}
	if len(ranking.Projects) > 0 {
		top := ranking.Projects[0]
		builder.WriteString(fmt.Sprintf("\n🏆 Most active project: <b>%s</b> (%s)",
			html.EscapeString(top.Title), timeutil.FormatDuration(top.Total)))
	}

	return strings.TrimSpace(builder.String()), nil
}

// RenderSummary renders a windowed summary, weekly or monthly, as an HTML
// message.
func (s *ReportService) RenderSummary(title string, summary *Summary) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📊 <b>%s</b>\n", html.EscapeString(title)))
	builder.WriteString(fmt.Sprintf("🗓 %s – %s\n\n",
		summary.From.Format("02.01.2006"), summary.To.Format("02.01.2006")))

	if len(summary.Days) == 0 {
		builder.WriteString("— no time logged in this period\n")
		return builder.String()
	}

	for _, day := range summary.Days {
		builder.WriteString(fmt.Sprintf("<b>%s</b> — %s\n",
			day.Date.Format("Mon 02.01"), timeutil.FormatDuration(day.Total)))
		for _, entry := range day.Entries {
			builder.WriteString(formatEntry(entry))
		}
	}

	builder.WriteString(fmt.Sprintf("\n⏱ Total: <b>%s</b>\n", timeutil.FormatDuration(summary.Total)))
	return builder.String()
}

func formatEntry(entry model.TimeEntry) string {
	var sb strings.Builder

	if entry.EndTime == nil {
		sb.WriteString(fmt.Sprintf("  ▫️ %s – … (running)", entry.StartTime))
	} else {
		sb.WriteString(fmt.Sprintf("  ▫️ %s – %s (%s)",
			entry.StartTime, *entry.EndTime, timeutil.FormatDuration(entry.Duration())))
	}

	if desc := strings.TrimSpace(entry.Description); desc != "" {
		sb.WriteString(fmt.Sprintf(" — %s", html.EscapeString(desc)))
	}

	sb.WriteByte('\n')
	return sb.String()
}
