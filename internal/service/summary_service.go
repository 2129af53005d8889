package service

import (
	"context"
	"sort"
	"time"

	"github.com/toggle-corp/chrono-server/internal/interval"
	"github.com/toggle-corp/chrono-server/internal/model"
	"github.com/toggle-corp/chrono-server/internal/repository"
	"github.com/toggle-corp/chrono-server/internal/timeutil"
)

// DaySummary is one date inside a window that has at least one entry.
type DaySummary struct {
	Date    time.Time
	Total   time.Duration
	Entries []model.TimeEntry
}

// Summary is a windowed rollup: grand total plus a per-date breakdown.
type Summary struct {
	From  time.Time
	To    time.Time
	Total time.Duration
	Days  []DaySummary
}

// ProjectHours is one project's subtotal in a per-project report.
type ProjectHours struct {
	ProjectID uint
	Title     string
	Total     time.Duration
}

// ProjectHoursReport is the grand total plus per-project subtotals.
type ProjectHoursReport struct {
	Total    time.Duration
	Projects []ProjectHours
}

// ProjectOverview is one row of MyProjects: a project the user has logged
// time against, with its client, last modification, and the status of its
// most recently modified task group.
type ProjectOverview struct {
	ProjectID  uint
	Title      string
	ClientName string
	Total      time.Duration
	ModifiedAt time.Time
	Status     *model.Status
}

// SummaryService orchestrates the windowed rollup reports. It holds no
// state; the reference time is always passed in by the caller.
type SummaryService struct {
	entryRepo   *repository.TimeEntryRepository
	taskRepo    *repository.TaskRepository
	projectRepo *repository.ProjectRepository
}

func NewSummaryService(entryRepo *repository.TimeEntryRepository, taskRepo *repository.TaskRepository, projectRepo *repository.ProjectRepository) *SummaryService {
	return &SummaryService{entryRepo: entryRepo, taskRepo: taskRepo, projectRepo: projectRepo}
}

// WeeklySummary totals the user's entries for the Monday-Sunday week
// containing now, with a per-date breakdown.
func (s *SummaryService) WeeklySummary(ctx context.Context, userID uint, now time.Time) (*Summary, error) {
	from, to := timeutil.WeekWindow(now)
	return s.summarize(ctx, userID, from, to)
}

// MonthlySummary totals the user's entries for the calendar month containing
// now. Entries outside the month never contribute.
func (s *SummaryService) MonthlySummary(ctx context.Context, userID uint, now time.Time) (*Summary, error) {
	from, to := timeutil.MonthWindow(now)
	return s.summarize(ctx, userID, from, to)
}

// DashboardThisWeek is the weekly summary for the authenticated user.
// Unauthenticated callers (userID zero) get an empty summary, not an error.
func (s *SummaryService) DashboardThisWeek(ctx context.Context, userID uint, now time.Time) (*Summary, error) {
	from, to := timeutil.WeekWindow(now)
	if userID == 0 {
		return &Summary{From: from, To: to}, nil
	}
	return s.summarize(ctx, userID, from, to)
}

func (s *SummaryService) summarize(ctx context.Context, userID uint, from, to time.Time) (*Summary, error) {
	summary := &Summary{From: from, To: to}
	if userID == 0 {
		return summary, nil
	}

	entries, err := s.entryRepo.ListForUserRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	days := interval.SumBy(entries,
		func(e model.TimeEntry) time.Time { return e.Date },
		model.TimeEntry.Duration)
	for _, day := range days {
		summary.Total += day.Total
		summary.Days = append(summary.Days, DaySummary{
			Date:    day.Key,
			Total:   day.Total,
			Entries: day.Items,
		})
	}
	return summary, nil
}

// HoursByProject reports the user's all-time totals per accessible project.
// Only projects with at least one contributing entry appear; visibility
// follows user-group membership.
func (s *SummaryService) HoursByProject(ctx context.Context, userID uint) (*ProjectHoursReport, error) {
	return s.projectHours(ctx, userID, nil, nil)
}

// MostActiveProject ranks the user's accessible projects by time logged in
// the week containing now, busiest first.
func (s *SummaryService) MostActiveProject(ctx context.Context, userID uint, now time.Time) (*ProjectHoursReport, error) {
	from, to := timeutil.WeekWindow(now)
	report, err := s.projectHours(ctx, userID, &from, &to)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(report.Projects, func(i, j int) bool {
		return report.Projects[i].Total > report.Projects[j].Total
	})
	return report, nil
}

func (s *SummaryService) projectHours(ctx context.Context, userID uint, from, to *time.Time) (*ProjectHoursReport, error) {
	report := &ProjectHoursReport{}
	if userID == 0 {
		return report, nil
	}

	visible, err := s.projectRepo.VisibleIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	visibleSet := make(map[uint]bool, len(visible))
	for _, id := range visible {
		visibleSet[id] = true
	}

	rows, err := s.entryRepo.ProjectRows(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	accessible := make([]repository.ProjectRow, 0, len(rows))
	for _, row := range rows {
		if visibleSet[row.ProjectID] {
			accessible = append(accessible, row)
		}
	}

	groups := interval.SumBy(accessible,
		func(row repository.ProjectRow) uint { return row.ProjectID },
		repository.ProjectRow.Duration)
	for _, g := range groups {
		report.Total += g.Total
		report.Projects = append(report.Projects, ProjectHours{
			ProjectID: g.Key,
			Title:     g.Items[0].ProjectTitle,
			Total:     g.Total,
		})
	}
	return report, nil
}

// MyProjects reports one row per project the user has ever logged time
// against, regardless of window.
func (s *SummaryService) MyProjects(ctx context.Context, userID uint) ([]ProjectOverview, error) {
	if userID == 0 {
		return nil, nil
	}

	rows, err := s.entryRepo.ProjectRows(ctx, userID, nil, nil)
	if err != nil {
		return nil, err
	}
	groups := interval.SumBy(rows,
		func(row repository.ProjectRow) uint { return row.ProjectID },
		repository.ProjectRow.Duration)
	if len(groups) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.Key)
	}
	statuses, err := s.taskRepo.LatestGroupStatusByProject(ctx, ids)
	if err != nil {
		return nil, err
	}

	overviews := make([]ProjectOverview, 0, len(groups))
	for _, g := range groups {
		first := g.Items[0]
		overview := ProjectOverview{
			ProjectID:  g.Key,
			Title:      first.ProjectTitle,
			ClientName: first.ClientName,
			Total:      g.Total,
			ModifiedAt: first.ProjectModifiedAt,
		}
		if status, ok := statuses[g.Key]; ok {
			overview.Status = &status
		}
		overviews = append(overviews, overview)
	}
	return overviews, nil
}
