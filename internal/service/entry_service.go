package service

import (
	"context"
	"sync"
	"time"

	"github.com/toggle-corp/chrono-server/internal/model"
	"github.com/toggle-corp/chrono-server/internal/repository"
	"github.com/toggle-corp/chrono-server/internal/timeutil"
)

// EntryInput represents data required to log a time entry.
type EntryInput struct {
	Description string
	Date        time.Time
	Start       timeutil.TimeOfDay
	End         *timeutil.TimeOfDay
	TaskID      uint
}

// userLockCount sizes the striped per-user write locks.
const userLockCount = 32

// EntryService wraps the time-entry write path. Overlap validation and the
// write run as one transaction, and writers for the same user are
// serialized, so two concurrent logs cannot both validate against a stale
// snapshot and commit an undetected overlap.
type EntryService struct {
	entryRepo *repository.TimeEntryRepository
	taskRepo  *repository.TaskRepository
	userLocks [userLockCount]sync.Mutex
}

func NewEntryService(entryRepo *repository.TimeEntryRepository, taskRepo *repository.TaskRepository) *EntryService {
	return &EntryService{entryRepo: entryRepo, taskRepo: taskRepo}
}

func (s *EntryService) lockUser(userID uint) *sync.Mutex {
	return &s.userLocks[userID%userLockCount]
}

// Log creates a new entry for the user. The referenced task must exist.
func (s *EntryService) Log(ctx context.Context, user *model.User, input EntryInput) (*model.TimeEntry, error) {
	if _, err := s.taskRepo.Find(ctx, input.TaskID); err != nil {
		return nil, err
	}

	entry := model.TimeEntry{
		Description: input.Description,
		Date:        timeutil.DateOf(input.Date),
		StartTime:   input.Start,
		EndTime:     input.End,
		TaskID:      input.TaskID,
		UserID:      user.ID,
	}

	mu := s.lockUser(user.ID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.entryRepo.SaveValidated(ctx, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Update replaces an entry's details and re-runs overlap validation against
// the rest of the user's day, excluding the entry itself.
func (s *EntryService) Update(ctx context.Context, user *model.User, entryID uint, input EntryInput) (*model.TimeEntry, error) {
	entry, err := s.entryRepo.Find(ctx, user.ID, entryID)
	if err != nil {
		return nil, err
	}
	if input.TaskID != 0 && input.TaskID != entry.TaskID {
		if _, err := s.taskRepo.Find(ctx, input.TaskID); err != nil {
			return nil, err
		}
		entry.TaskID = input.TaskID
	}

	entry.Description = input.Description
	entry.Date = timeutil.DateOf(input.Date)
	entry.StartTime = input.Start
	entry.EndTime = input.End

	mu := s.lockUser(user.ID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.entryRepo.SaveValidated(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Finish closes an open entry at the given end time.
func (s *EntryService) Finish(ctx context.Context, user *model.User, entryID uint, end timeutil.TimeOfDay) (*model.TimeEntry, error) {
	entry, err := s.entryRepo.Find(ctx, user.ID, entryID)
	if err != nil {
		return nil, err
	}
	entry.EndTime = &end

	mu := s.lockUser(user.ID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.entryRepo.SaveValidated(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete removes a user's entry.
func (s *EntryService) Delete(ctx context.Context, user *model.User, entryID uint) error {
	return s.entryRepo.Delete(ctx, user.ID, entryID)
}

// ListDay returns the user's entries for one calendar date.
func (s *EntryService) ListDay(ctx context.Context, user *model.User, date time.Time) ([]model.TimeEntry, error) {
	return s.entryRepo.ListForUserDay(ctx, user.ID, date, 0)
}
