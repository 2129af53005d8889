package model

import (
	"time"

	"github.com/toggle-corp/chrono-server/internal/interval"
	"github.com/toggle-corp/chrono-server/internal/timeutil"
)

// TimeEntry is one logged slot of work: a calendar date plus a start time
// and an optional end time. A missing end time means the entry is still
// running.
type TimeEntry struct {
	ID          uint `gorm:"primaryKey"`
	Description string
	Date        time.Time           `gorm:"index:idx_entry_user_date,priority:2"`
	StartTime   timeutil.TimeOfDay  `gorm:"type:text"`
	EndTime     *timeutil.TimeOfDay `gorm:"type:text"`
	TaskID      uint                `gorm:"index"`
	Task        *Task               `gorm:"constraint:OnDelete:CASCADE"`
	UserID      uint                `gorm:"index:idx_entry_user_date,priority:1"`
	User        *User               `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	ModifiedAt  time.Time `gorm:"autoUpdateTime"`
}

// Interval adapts the entry for overlap checks and duration math.
func (e TimeEntry) Interval() interval.Interval {
	return interval.Interval{
		ID:          e.ID,
		UserID:      e.UserID,
		TaskID:      e.TaskID,
		Date:        e.Date,
		Start:       e.StartTime,
		End:         e.EndTime,
		Description: e.Description,
	}
}

// Duration is End-Start, zero while the entry is still running.
func (e TimeEntry) Duration() time.Duration {
	return e.Interval().Duration()
}
