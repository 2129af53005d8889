package model

import "time"

// Status tracks task-group progress.
type Status int

const (
	StatusDone Status = iota
	StatusNotDone
	StatusInProgress
)

var statusLabels = map[Status]string{
	StatusDone:       "Done",
	StatusNotDone:    "Not-Done",
	StatusInProgress: "In-Progress",
}

func (s Status) Label() string { return statusLabels[s] }

// TaskGroup collects tasks, optionally under a project. The date range is
// descriptive only and is not enforced against entry dates.
type TaskGroup struct {
	ID          uint `gorm:"primaryKey"`
	Title       string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *Status
	ProjectID   *uint       `gorm:"index"`
	Project     *Project    `gorm:"constraint:OnDelete:CASCADE"`
	Users       []User      `gorm:"many2many:task_group_users"`
	UserGroups  []UserGroup `gorm:"many2many:task_group_user_groups"`
	Audit
}

// Task is the unit of work time entries are logged against.
type Task struct {
	ID          uint `gorm:"primaryKey"`
	Title       string
	Description string
	ExternalURL string
	TaskGroupID *uint      `gorm:"index"`
	TaskGroup   *TaskGroup `gorm:"constraint:OnDelete:CASCADE"`
	UserID      *uint      `gorm:"index"`
	User        *User      `gorm:"constraint:OnDelete:CASCADE"`
	Audit
}
