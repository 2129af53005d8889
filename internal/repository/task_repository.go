package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/toggle-corp/chrono-server/internal/apperr"
	"github.com/toggle-corp/chrono-server/internal/model"
)

// TaskRepository handles tasks and task groups.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Find(ctx context.Context, taskID uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, taskID).Error
	switch {
	case err == nil:
		return &task, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.NotFound("task")
	default:
		return nil, fmt.Errorf("find task: %w", err)
	}
}

// ListForUser returns the tasks assigned to the user, newest first.
func (r *TaskRepository) ListForUser(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) CreateGroup(ctx context.Context, group *model.TaskGroup) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return fmt.Errorf("create task group: %w", err)
	}
	return nil
}

// LatestGroupStatusByProject returns, for each given project, the status of
// its most recently modified task group. Projects whose groups all lack a
// status are absent from the result.
func (r *TaskRepository) LatestGroupStatusByProject(ctx context.Context, projectIDs []uint) (map[uint]model.Status, error) {
	if len(projectIDs) == 0 {
		return map[uint]model.Status{}, nil
	}

	var rows []struct {
		ProjectID uint
		Status    *model.Status
	}
	// Ascending scan; the newest group for each project wins.
	if err := r.db.WithContext(ctx).Model(&model.TaskGroup{}).
		Select("project_id, status").
		Where("project_id IN ?", projectIDs).
		Order("modified_at, id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("group statuses: %w", err)
	}

	statuses := make(map[uint]model.Status, len(rows))
	for _, row := range rows {
		if row.Status != nil {
			statuses[row.ProjectID] = *row.Status
		}
	}
	return statuses, nil
}
