package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"Tracker/internal/authz"
	"Tracker/internal/cache"
	dom "Tracker/internal/domain"
	"Tracker/internal/logger"
	"Tracker/internal/repo"
	"Tracker/internal/utils"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"
)

const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 2000
)

// TaskService runs every task and sharing operation. Methods that target an
// existing task load it, authorize the actor against it, and only then
// write. Nothing about a decision is remembered between calls.
type TaskService struct {
	tasks repo.TaskRepo
	perms repo.PermissionRepo
	cache *cache.TaskCache
	sf    singleflight.Group

	// gens counts invalidations per owner. A list fill only writes to the
	// cache if no invalidation happened while it was reading the store.
	mu   sync.Mutex
	gens map[int64]uint64
}

// NewTaskService creates a TaskService. If c is nil, caching is disabled.
func NewTaskService(tasks repo.TaskRepo, perms repo.PermissionRepo, c *cache.TaskCache) *TaskService {
	return &TaskService{tasks: tasks, perms: perms, cache: c, gens: make(map[int64]uint64)}
}

// Create stores a new task owned by ownerID.
func (s *TaskService) Create(ctx context.Context, ownerID int64, title string, desc *string) (dom.Task, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return dom.Task{}, err
	}
	desc, err = normalizeDescription(desc)
	if err != nil {
		return dom.Task{}, err
	}
	t, err := s.tasks.Create(ctx, dom.Task{Title: title, Description: desc, OwnerID: ownerID})
	if err != nil {
		if utils.IsPGForeignKeyViolation(err) {
			return dom.Task{}, ErrUnknownActor
		}
		return dom.Task{}, err
	}
	s.invalidateCache(ctx, ownerID)
	return t, nil
}

// List returns the tasks ownerID owns. Tasks shared with ownerID are not
// included.
func (s *TaskService) List(ctx context.Context, ownerID int64) ([]dom.Task, error) {
	if s.cache == nil {
		return s.tasks.ListByOwner(ctx, ownerID)
	}
	// The flight is shared, so it must not die with whichever caller started it.
	v, err, _ := s.sf.Do(listFlightKey(ownerID), func() (interface{}, error) {
		return s.loadList(context.WithoutCancel(ctx), ownerID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Task), nil
}

func (s *TaskService) loadList(ctx context.Context, ownerID int64) ([]dom.Task, error) {
	if list, err := s.cache.GetList(ctx, ownerID); err == nil && list != nil {
		return list, nil
	} else if err != nil {
		logger.Warningf("task cache read for owner %d: %v", ownerID, err)
	}
	gen := s.generation(ownerID)
	list, err := s.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	// Held across the write so an invalidation either lands first and the
	// write is skipped, or waits and deletes what was written.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[ownerID] != gen {
		return list, nil
	}
	if err := s.cache.SetList(ctx, ownerID, list); err != nil {
		logger.Warningf("task cache write for owner %d: %v", ownerID, err)
	}
	return list, nil
}

// Get returns a task the actor may read.
func (s *TaskService) Get(ctx context.Context, actorID, id int64) (dom.Task, error) {
	return s.loadAuthorized(ctx, actorID, id, authz.OpRead)
}

// Update applies patch if the actor owns the task or holds can_update.
func (s *TaskService) Update(ctx context.Context, actorID, id int64, patch dom.TaskPatch) (dom.Task, error) {
	existing, err := s.loadAuthorized(ctx, actorID, id, authz.OpUpdate)
	if err != nil {
		return dom.Task{}, err
	}
	if patch.Title != nil {
		title, err := normalizeTitle(*patch.Title)
		if err != nil {
			return dom.Task{}, err
		}
		patch.Title = &title
	}
	if patch.DescriptionSet {
		desc, err := normalizeDescription(patch.Description)
		if err != nil {
			return dom.Task{}, err
		}
		patch.Description = desc
	}
	if patch.Empty() {
		return existing, nil
	}
	t, err := s.tasks.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, err
	}
	s.invalidateCache(ctx, t.OwnerID)
	return t, nil
}

// Delete removes a task and its grants. Only the owner may do this.
func (s *TaskService) Delete(ctx context.Context, actorID, id int64) error {
	existing, err := s.loadAuthorized(ctx, actorID, id, authz.OpDelete)
	if err != nil {
		return err
	}
	deleted, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.invalidateCache(ctx, existing.OwnerID)
	return nil
}

// SetPermission creates or overwrites the grant of userID on taskID. Only
// the task owner may do this.
func (s *TaskService) SetPermission(ctx context.Context, actorID, taskID, userID int64, canRead, canUpdate bool) (dom.Permission, error) {
	if userID <= 0 {
		return dom.Permission{}, fmt.Errorf("%w: user_id must be positive", ErrInvalidInput)
	}
	if _, err := s.loadAuthorized(ctx, actorID, taskID, authz.OpManagePermissions); err != nil {
		return dom.Permission{}, err
	}
	p, err := s.perms.Set(ctx, dom.Permission{
		TaskID:    taskID,
		UserID:    userID,
		CanRead:   canRead,
		CanUpdate: canUpdate,
	})
	switch {
	case errors.Is(err, repo.ErrTaskNotFound):
		return dom.Permission{}, ErrNotFound
	case errors.Is(err, repo.ErrUserNotFound):
		return dom.Permission{}, ErrUserNotFound
	case err != nil:
		return dom.Permission{}, err
	}
	return p, nil
}

// ListPermissions returns every grant on taskID. Only the owner may see them.
func (s *TaskService) ListPermissions(ctx context.Context, actorID, taskID int64) ([]dom.Permission, error) {
	if _, err := s.loadAuthorized(ctx, actorID, taskID, authz.OpManagePermissions); err != nil {
		return nil, err
	}
	return s.perms.ListByTask(ctx, taskID)
}

// loadAuthorized fetches the task and checks op against it. The ledger is
// read only for non-owners and only when op can be granted through it.
func (s *TaskService) loadAuthorized(ctx context.Context, actorID, id int64, op authz.Operation) (dom.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, err
	}

	var grant *dom.Permission
	if t.OwnerID != actorID && authz.NeedsGrant(op) {
		p, err := s.perms.Get(ctx, t.ID, actorID)
		switch {
		case err == nil:
			grant = &p
		case !errors.Is(err, pgx.ErrNoRows):
			return dom.Task{}, err
		}
	}

	if authz.Decide(actorID, t, grant, op) != authz.Allow {
		logger.Debugf("deny %s on task %d for user %d (%s)", op, t.ID, actorID, authz.RelationOf(actorID, t, grant))
		return dom.Task{}, ErrNotAuthorized
	}
	return t, nil
}

func (s *TaskService) invalidateCache(ctx context.Context, ownerID int64) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	s.gens[ownerID]++
	s.mu.Unlock()
	s.sf.Forget(listFlightKey(ownerID))
	if err := s.cache.Invalidate(ctx, ownerID); err != nil {
		logger.Warningf("task cache invalidate for owner %d: %v", ownerID, err)
	}
}

func (s *TaskService) generation(ownerID int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[ownerID]
}

func listFlightKey(ownerID int64) string {
	return "list:" + strconv.FormatInt(ownerID, 10)
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return "", fmt.Errorf("%w: title longer than %d characters", ErrInvalidInput, MaxTitleLen)
	}
	return title, nil
}

func normalizeDescription(desc *string) (*string, error) {
	if desc == nil {
		return nil, nil
	}
	d := strings.TrimSpace(*desc)
	if utf8.RuneCountInString(d) > MaxDescriptionLen {
		return nil, fmt.Errorf("%w: description longer than %d characters", ErrInvalidInput, MaxDescriptionLen)
	}
	return &d, nil
}
