//go:build integration

// Run with: TEST_PG_DSN=postgres://... go test -tags integration ./internal/repo/
package repo

import (
	"context"
	"os"
	"testing"

	dom "Tracker/internal/domain"
	"Tracker/internal/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pgFixture struct {
	users *PGUserRepo
	tasks *PGTaskRepo
	perms *PGPermissionRepo

	alice, bob dom.User
	task       dom.Task
}

func newPGFixture(t *testing.T) *pgFixture {
	t.Helper()
	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN not set")
	}
	ctx := context.Background()

	db, err := goose.OpenDBWithDriver("pgx", dsn)
	require.NoError(t, err)
	require.NoError(t, goose.Up(db, "../../migrations"))
	require.NoError(t, db.Close())

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	_, err = pool.Exec(ctx, `TRUNCATE task_user_permissions, tasks, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	f := &pgFixture{
		users: NewPGUserRepo(pool),
		tasks: NewPGTaskRepo(pool),
		perms: NewPGPermissionRepo(pool),
	}
	f.alice, err = f.users.Create(ctx, "alice", "hash")
	require.NoError(t, err)
	f.bob, err = f.users.Create(ctx, "bob", "hash")
	require.NoError(t, err)
	desc := "2 litres"
	f.task, err = f.tasks.Create(ctx, dom.Task{Title: "Buy milk", Description: &desc, OwnerID: f.alice.ID})
	require.NoError(t, err)
	return f
}

func TestPGUsernameConstraints(t *testing.T) {
	ctx := context.Background()
	f := newPGFixture(t)

	_, err := f.users.Create(ctx, "alice", "other")
	assert.True(t, utils.IsPGUniqueViolation(err), "%v", err)

	_, err = f.users.Create(ctx, "Alice", "other")
	assert.NoError(t, err)

	got, err := f.users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, got.ID)

	_, err = f.users.GetByUsername(ctx, "alice ")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestPGTaskCreateForMissingOwner(t *testing.T) {
	f := newPGFixture(t)

	_, err := f.tasks.Create(context.Background(), dom.Task{Title: "Ghost task", OwnerID: 4242})
	assert.True(t, utils.IsPGForeignKeyViolation(err), "%v", err)
}

func TestPGTaskPartialUpdate(t *testing.T) {
	ctx := context.Background()
	f := newPGFixture(t)

	title := "Buy oat milk"
	got, err := f.tasks.Update(ctx, f.task.ID, dom.TaskPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", got.Title)
	require.NotNil(t, got.Description)
	assert.Equal(t, "2 litres", *got.Description)
	assert.False(t, got.UpdatedAt.Before(f.task.UpdatedAt))

	desc := "1 litre"
	got, err = f.tasks.Update(ctx, f.task.ID, dom.TaskPatch{Description: &desc, DescriptionSet: true})
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", got.Title)
	assert.Equal(t, "1 litre", *got.Description)

	got, err = f.tasks.Update(ctx, f.task.ID, dom.TaskPatch{DescriptionSet: true})
	require.NoError(t, err)
	assert.Nil(t, got.Description)
	assert.Equal(t, "Buy oat milk", got.Title)

	_, err = f.tasks.Update(ctx, 9999, dom.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestPGListByOwner(t *testing.T) {
	ctx := context.Background()
	f := newPGFixture(t)

	second, err := f.tasks.Create(ctx, dom.Task{Title: "Walk dog", OwnerID: f.alice.ID})
	require.NoError(t, err)

	list, err := f.tasks.ListByOwner(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, f.task.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
	assert.Nil(t, list[1].Description)

	list, err = f.tasks.ListByOwner(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestPGPermissionUpsertKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	f := newPGFixture(t)

	_, err := f.perms.Set(ctx, dom.Permission{TaskID: f.task.ID, UserID: f.bob.ID, CanRead: true})
	require.NoError(t, err)
	p, err := f.perms.Set(ctx, dom.Permission{TaskID: f.task.ID, UserID: f.bob.ID, CanUpdate: true})
	require.NoError(t, err)
	assert.Equal(t, dom.Permission{TaskID: f.task.ID, UserID: f.bob.ID, CanRead: false, CanUpdate: true}, p)

	list, err := f.perms.ListByTask(ctx, f.task.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p, list[0])

	got, err := f.perms.Get(ctx, f.task.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = f.perms.Get(ctx, f.task.ID, f.alice.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestPGPermissionSetMissingRefs(t *testing.T) {
	ctx := context.Background()
	f := newPGFixture(t)

	_, err := f.perms.Set(ctx, dom.Permission{TaskID: 9999, UserID: f.bob.ID, CanRead: true})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = f.perms.Set(ctx, dom.Permission{TaskID: f.task.ID, UserID: 9999, CanRead: true})
	assert.ErrorIs(t, err, ErrUserNotFound)

	list, err := f.perms.ListByTask(ctx, f.task.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPGDeleteRemovesGrants(t *testing.T) {
	ctx := context.Background()
	f := newPGFixture(t)

	_, err := f.perms.Set(ctx, dom.Permission{TaskID: f.task.ID, UserID: f.bob.ID, CanRead: true})
	require.NoError(t, err)

	deleted, err := f.tasks.Delete(ctx, f.task.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = f.perms.Get(ctx, f.task.ID, f.bob.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	_, err = f.tasks.GetByID(ctx, f.task.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	deleted, err = f.tasks.Delete(ctx, f.task.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestPGDeleteAllForTask(t *testing.T) {
	ctx := context.Background()
	f := newPGFixture(t)

	for _, u := range []dom.User{f.alice, f.bob} {
		_, err := f.perms.Set(ctx, dom.Permission{TaskID: f.task.ID, UserID: u.ID, CanRead: true})
		require.NoError(t, err)
	}
	n, err := f.perms.DeleteAllForTask(ctx, f.task.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = f.tasks.GetByID(ctx, f.task.ID)
	assert.NoError(t, err, "task itself stays")
}
