// Package repotest provides an in-memory implementation of the repo
// interfaces for tests. It mirrors the Postgres behaviour callers depend
// on: pgx.ErrNoRows for missing rows, a 23505 PgError for duplicate
// usernames, and cascading grant removal on task delete.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	dom "Tracker/internal/domain"
	"Tracker/internal/repo"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type permKey struct{ taskID, userID int64 }

// Store is one shared in-memory database.
type Store struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]dom.User
	tasks  map[int64]dom.Task
	perms  map[permKey]dom.Permission
}

func NewStore() *Store {
	return &Store{
		users: make(map[int64]dom.User),
		tasks: make(map[int64]dom.Task),
		perms: make(map[permKey]dom.Permission),
	}
}

func (s *Store) Users() repo.UserRepo             { return userRepo{s} }
func (s *Store) Tasks() repo.TaskRepo             { return taskRepo{s} }
func (s *Store) Permissions() repo.PermissionRepo { return permRepo{s} }

// PermissionCount returns how many ledger rows exist for taskID.
func (s *Store) PermissionCount(taskID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.perms {
		if k.taskID == taskID {
			n++
		}
	}
	return n
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

type userRepo struct{ s *Store }

func (r userRepo) GetByUsername(_ context.Context, username string) (dom.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (r userRepo) Create(_ context.Context, username, passwordHash string) (dom.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return dom.User{}, &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
		}
	}
	u := dom.User{ID: r.s.id(), Username: username, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	r.s.users[u.ID] = u
	return u, nil
}

type taskRepo struct{ s *Store }

func (r taskRepo) Create(_ context.Context, t dom.Task) (dom.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[t.OwnerID]; !ok {
		return dom.Task{}, &pgconn.PgError{Code: "23503", Message: "owner does not exist"}
	}
	now := time.Now().UTC()
	t.ID = r.s.id()
	t.CreatedAt, t.UpdatedAt = now, now
	r.s.tasks[t.ID] = t
	return t, nil
}

func (r taskRepo) GetByID(_ context.Context, id int64) (dom.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return dom.Task{}, pgx.ErrNoRows
	}
	return t, nil
}

func (r taskRepo) ListByOwner(_ context.Context, ownerID int64) ([]dom.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := []dom.Task{}
	for _, t := range r.s.tasks {
		if t.OwnerID == ownerID {
			list = append(list, t)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r taskRepo) Update(_ context.Context, id int64, patch dom.TaskPatch) (dom.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return dom.Task{}, pgx.ErrNoRows
	}
	t = patch.Apply(t)
	t.UpdatedAt = time.Now().UTC()
	r.s.tasks[id] = t
	return t, nil
}

func (r taskRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[id]; !ok {
		return false, nil
	}
	r.s.deletePerms(id)
	delete(r.s.tasks, id)
	return true, nil
}

type permRepo struct{ s *Store }

func (r permRepo) Set(_ context.Context, p dom.Permission) (dom.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[p.TaskID]; !ok {
		return dom.Permission{}, repo.ErrTaskNotFound
	}
	if _, ok := r.s.users[p.UserID]; !ok {
		return dom.Permission{}, repo.ErrUserNotFound
	}
	r.s.perms[permKey{p.TaskID, p.UserID}] = p
	return p, nil
}

func (r permRepo) Get(_ context.Context, taskID, userID int64) (dom.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.perms[permKey{taskID, userID}]
	if !ok {
		return dom.Permission{}, pgx.ErrNoRows
	}
	return p, nil
}

func (r permRepo) ListByTask(_ context.Context, taskID int64) ([]dom.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := []dom.Permission{}
	for k, p := range r.s.perms {
		if k.taskID == taskID {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UserID < list[j].UserID })
	return list, nil
}

func (r permRepo) DeleteAllForTask(_ context.Context, taskID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.deletePerms(taskID), nil
}

// deletePerms must be called with s.mu held.
func (s *Store) deletePerms(taskID int64) int64 {
	var n int64
	for k := range s.perms {
		if k.taskID == taskID {
			delete(s.perms, k)
			n++
		}
	}
	return n
}
