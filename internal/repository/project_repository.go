package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/toggle-corp/chrono-server/internal/apperr"
	"github.com/toggle-corp/chrono-server/internal/model"
)

// ProjectRepository handles clients, projects, and project visibility.
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) CreateClient(ctx context.Context, client *model.Client) error {
	if err := r.db.WithContext(ctx).Create(client).Error; err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (r *ProjectRepository) Find(ctx context.Context, projectID uint) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).First(&project, projectID).Error
	switch {
	case err == nil:
		return &project, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.NotFound("project")
	default:
		return nil, fmt.Errorf("find project: %w", err)
	}
}

// AttachUserGroup links a user group to a project, granting the group's
// members visibility of it.
func (r *ProjectRepository) AttachUserGroup(ctx context.Context, projectID, groupID uint) error {
	err := r.db.WithContext(ctx).
		Model(&model.Project{ID: projectID}).
		Association("UserGroups").
		Append(&model.UserGroup{ID: groupID})
	if err != nil {
		return fmt.Errorf("attach user group: %w", err)
	}
	return nil
}

// VisibleIDs returns the projects the user can access: those with at least
// one attached user group the user is a member of.
func (r *ProjectRepository) VisibleIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&model.Project{}).Distinct().
		Joins("JOIN project_user_groups pug ON pug.project_id = projects.id").
		Joins("JOIN user_group_members ugm ON ugm.user_group_id = pug.user_group_id").
		Where("ugm.user_id = ?", userID).
		Pluck("projects.id", &ids).Error; err != nil {
		return nil, fmt.Errorf("visible projects: %w", err)
	}
	return ids, nil
}
