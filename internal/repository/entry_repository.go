package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/toggle-corp/chrono-server/internal/apperr"
	"github.com/toggle-corp/chrono-server/internal/interval"
	"github.com/toggle-corp/chrono-server/internal/model"
	"github.com/toggle-corp/chrono-server/internal/timeutil"
)

// TimeEntryRepository handles persistence and range queries for time entries.
type TimeEntryRepository struct {
	db *gorm.DB
}

func NewTimeEntryRepository(db *gorm.DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

func (r *TimeEntryRepository) Find(ctx context.Context, userID, entryID uint) (*model.TimeEntry, error) {
	var entry model.TimeEntry
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, entryID).First(&entry).Error
	switch {
	case err == nil:
		return &entry, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.NotFound("time_entry")
	default:
		return nil, fmt.Errorf("find entry: %w", err)
	}
}

// ListForUserDay returns the entries forming the overlap candidate set: same
// user, same calendar date, excluding excludeID when the caller is updating
// an existing entry (pass 0 on create).
func (r *TimeEntryRepository) ListForUserDay(ctx context.Context, userID uint, date time.Time, excludeID uint) ([]model.TimeEntry, error) {
	return r.listForUserDay(r.db.WithContext(ctx), userID, date, excludeID)
}

func (r *TimeEntryRepository) listForUserDay(db *gorm.DB, userID uint, date time.Time, excludeID uint) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	q := db.Where("user_id = ? AND date = ?", userID, timeutil.DateOf(date))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Order("start_time").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries for day: %w", err)
	}
	return entries, nil
}

// ListForUserRange returns the user's entries with from <= date <= to,
// ordered by date then start time.
func (r *TimeEntryRepository) ListForUserRange(ctx context.Context, userID uint, from, to time.Time) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, timeutil.DateOf(from), timeutil.DateOf(to)).
		Order("date, start_time").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries for range: %w", err)
	}
	return entries, nil
}

// SaveValidated runs the overlap check and the write as one transaction, so
// a concurrent writer cannot slip a colliding entry in between. Works for
// both creates (ID zero) and updates.
func (r *TimeEntryRepository) SaveValidated(ctx context.Context, entry *model.TimeEntry) error {
	entry.Date = timeutil.DateOf(entry.Date)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := r.listForUserDay(tx, entry.UserID, entry.Date, entry.ID)
		if err != nil {
			return err
		}
		others := make([]interval.Interval, 0, len(existing))
		for _, e := range existing {
			others = append(others, e.Interval())
		}
		if err := interval.Validate(entry.Interval(), others); err != nil {
			return err
		}
		if err := tx.Save(entry).Error; err != nil {
			return fmt.Errorf("save entry: %w", err)
		}
		return nil
	})
}

// Delete removes a user's entry, reporting NotFound when nothing matched.
func (r *TimeEntryRepository) Delete(ctx context.Context, userID, entryID uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, entryID).Delete(&model.TimeEntry{})
	if res.Error != nil {
		return fmt.Errorf("delete entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("time_entry")
	}
	return nil
}

// ProjectRow is one entry joined up its ownership chain to the project and
// client, flattened for the per-project reports.
type ProjectRow struct {
	EntryID           uint
	Date              time.Time
	StartTime         timeutil.TimeOfDay
	EndTime           *timeutil.TimeOfDay
	ProjectID         uint
	ProjectTitle      string
	ClientName        string
	ProjectModifiedAt time.Time
}

// Duration follows the entry rule: open rows contribute zero.
func (row ProjectRow) Duration() time.Duration {
	if row.EndTime == nil {
		return 0
	}
	return row.EndTime.Sub(row.StartTime)
}

// ProjectRows joins the user's entries through task and task group to their
// project (entries on tasks without a project are skipped by the inner
// joins). from/to bound the entry date when non-nil.
func (r *TimeEntryRepository) ProjectRows(ctx context.Context, userID uint, from, to *time.Time) ([]ProjectRow, error) {
	q := r.db.WithContext(ctx).Model(&model.TimeEntry{}).
		Select(`time_entries.id AS entry_id,
			time_entries.date AS date,
			time_entries.start_time AS start_time,
			time_entries.end_time AS end_time,
			projects.id AS project_id,
			projects.title AS project_title,
			COALESCE(clients.name, '') AS client_name,
			projects.modified_at AS project_modified_at`).
		Joins("JOIN tasks ON tasks.id = time_entries.task_id").
		Joins("JOIN task_groups ON task_groups.id = tasks.task_group_id").
		Joins("JOIN projects ON projects.id = task_groups.project_id").
		Joins("LEFT JOIN clients ON clients.id = projects.client_id").
		Where("time_entries.user_id = ?", userID)
	if from != nil {
		q = q.Where("time_entries.date >= ?", timeutil.DateOf(*from))
	}
	if to != nil {
		q = q.Where("time_entries.date <= ?", timeutil.DateOf(*to))
	}

	var rows []ProjectRow
	if err := q.Order("time_entries.date, time_entries.start_time, time_entries.id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("project rows: %w", err)
	}
	return rows, nil
}
