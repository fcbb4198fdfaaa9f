package repo

import (
	"context"
	"errors"

	dom "Tracker/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PermissionRepo is the sharing ledger.
type PermissionRepo interface {
	// Set inserts or overwrites the grant for (TaskID, UserID). It returns
	// ErrTaskNotFound or ErrUserNotFound when either side is missing.
	Set(ctx context.Context, p dom.Permission) (dom.Permission, error)
	Get(ctx context.Context, taskID, userID int64) (dom.Permission, error)
	ListByTask(ctx context.Context, taskID int64) ([]dom.Permission, error)
	DeleteAllForTask(ctx context.Context, taskID int64) (int64, error)
}

const permissionColumns = `task_id, user_id, can_read, can_update`

type PGPermissionRepo struct {
	db *pgxpool.Pool
}

func NewPGPermissionRepo(db *pgxpool.Pool) *PGPermissionRepo {
	return &PGPermissionRepo{db: db}
}

// Set runs in one transaction. The task row is locked FOR SHARE so a
// concurrent delete cannot leave an orphaned grant behind, and the upsert
// is a single statement keyed by the primary key.
func (r *PGPermissionRepo) Set(ctx context.Context, p dom.Permission) (dom.Permission, error) {
	var out dom.Permission
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := exists(ctx, tx, `SELECT 1 FROM tasks WHERE id = $1 FOR SHARE`, p.TaskID, ErrTaskNotFound); err != nil {
			return err
		}
		if err := exists(ctx, tx, `SELECT 1 FROM users WHERE id = $1`, p.UserID, ErrUserNotFound); err != nil {
			return err
		}
		query := `
			INSERT INTO task_user_permissions (task_id, user_id, can_read, can_update)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (task_id, user_id)
			DO UPDATE SET can_read = EXCLUDED.can_read, can_update = EXCLUDED.can_update
			RETURNING ` + permissionColumns
		var err error
		out, err = scanPermission(tx.QueryRow(ctx, query, p.TaskID, p.UserID, p.CanRead, p.CanUpdate))
		return err
	})
	return out, err
}

func (r *PGPermissionRepo) Get(ctx context.Context, taskID, userID int64) (dom.Permission, error) {
	query := `SELECT ` + permissionColumns + ` FROM task_user_permissions WHERE task_id = $1 AND user_id = $2`
	return scanPermission(r.db.QueryRow(ctx, query, taskID, userID))
}

func (r *PGPermissionRepo) ListByTask(ctx context.Context, taskID int64) ([]dom.Permission, error) {
	query := `SELECT ` + permissionColumns + ` FROM task_user_permissions WHERE task_id = $1 ORDER BY user_id`
	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []dom.Permission{}
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *PGPermissionRepo) DeleteAllForTask(ctx context.Context, taskID int64) (int64, error) {
	return deletePermissionsForTask(ctx, r.db, taskID)
}

// deletePermissionsForTask is shared with PGTaskRepo.Delete, which calls it
// inside its own transaction.
func deletePermissionsForTask(ctx context.Context, q querier, taskID int64) (int64, error) {
	tag, err := q.Exec(ctx, `DELETE FROM task_user_permissions WHERE task_id = $1`, taskID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func exists(ctx context.Context, q querier, query string, id int64, missing error) error {
	var one int
	err := q.QueryRow(ctx, query, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return missing
	}
	return err
}

func scanPermission(row pgx.Row) (dom.Permission, error) {
	var p dom.Permission
	err := row.Scan(&p.TaskID, &p.UserID, &p.CanRead, &p.CanUpdate)
	return p, err
}
