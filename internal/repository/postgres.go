package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/choretracker/choretracker/internal/database"
	"github.com/choretracker/choretracker/internal/metrics"
	"github.com/choretracker/choretracker/internal/models"
)

// NewPostgresStore builds a Store on pool. Closing the store closes the pool.
func NewPostgresStore(pool *database.Pool) *Store {
	return &Store{
		Users:       NewPostgresUserRepository(pool),
		Chores:      NewPostgresChoreRepository(pool),
		Assignments: NewPostgresAssignmentRepository(pool),
		Backend:     "postgres",
		health:      pool.HealthCheck,
		close:       pool.Close,
	}
}

func observe(operation string, start time.Time) {
	metrics.RecordDBQuery(operation, time.Since(start))
}

// PostgresUserRepository implements UserRepository using PostgreSQL.
type PostgresUserRepository struct {
	pool *database.Pool
}

// NewPostgresUserRepository creates a new PostgreSQL-backed user repository.
func NewPostgresUserRepository(pool *database.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id, name, email, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create stores a new user.
func (r *PostgresUserRepository) Create(ctx context.Context, create *models.UserCreate) (*models.User, error) {
	defer observe("user_create", time.Now())

	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (name, email) VALUES ($1, $2) RETURNING `+userColumns,
		create.Name, create.Email)
	user, err := scanUser(row)
	if err != nil {
		if database.IsCode(err, database.UniqueViolation) {
			return nil, models.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by its ID.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	defer observe("user_get", time.Now())

	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email, case-insensitively.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	defer observe("user_get_by_email", time.Now())

	user, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// List returns every user.
func (r *PostgresUserRepository) List(ctx context.Context) ([]*models.User, error) {
	defer observe("user_list", time.Now())

	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Update persists the name and email of user.
func (r *PostgresUserRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	defer observe("user_update", time.Now())

	updated, err := scanUser(r.pool.QueryRow(ctx,
		`UPDATE users SET name = $2, email = $3 WHERE id = $1 RETURNING `+userColumns,
		user.ID, user.Name, user.Email))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, models.ErrUserNotFound
		case database.IsCode(err, database.UniqueViolation):
			return nil, models.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return updated, nil
}

// Delete removes a user; its assignments go with it.
func (r *PostgresUserRepository) Delete(ctx context.Context, id int64) error {
	defer observe("user_delete", time.Now())

	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// PostgresChoreRepository implements ChoreRepository using PostgreSQL.
type PostgresChoreRepository struct {
	pool *database.Pool
}

// NewPostgresChoreRepository creates a new PostgreSQL-backed chore repository.
func NewPostgresChoreRepository(pool *database.Pool) *PostgresChoreRepository {
	return &PostgresChoreRepository{pool: pool}
}

const choreColumns = `id, title, cadence, created_at`

func scanChore(row pgx.Row) (*models.Chore, error) {
	var c models.Chore
	var cadence string
	if err := row.Scan(&c.ID, &c.Title, &cadence, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Cadence = models.Cadence(cadence)
	return &c, nil
}

// Create stores a new chore.
func (r *PostgresChoreRepository) Create(ctx context.Context, create *models.ChoreCreate) (*models.Chore, error) {
	defer observe("chore_create", time.Now())

	chore, err := scanChore(r.pool.QueryRow(ctx,
		`INSERT INTO chores (title, cadence) VALUES ($1, $2) RETURNING `+choreColumns,
		create.Title, string(create.Cadence)))
	if err != nil {
		return nil, fmt.Errorf("failed to create chore: %w", err)
	}
	return chore, nil
}

// GetByID retrieves a chore by its ID.
func (r *PostgresChoreRepository) GetByID(ctx context.Context, id int64) (*models.Chore, error) {
	defer observe("chore_get", time.Now())

	chore, err := scanChore(r.pool.QueryRow(ctx, `SELECT `+choreColumns+` FROM chores WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrChoreNotFound
		}
		return nil, fmt.Errorf("failed to get chore: %w", err)
	}
	return chore, nil
}

// List returns every chore.
func (r *PostgresChoreRepository) List(ctx context.Context) ([]*models.Chore, error) {
	defer observe("chore_list", time.Now())

	rows, err := r.pool.Query(ctx, `SELECT `+choreColumns+` FROM chores ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list chores: %w", err)
	}
	defer rows.Close()

	chores := make([]*models.Chore, 0)
	for rows.Next() {
		chore, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chore: %w", err)
		}
		chores = append(chores, chore)
	}
	return chores, rows.Err()
}

// Update persists the title and cadence of chore.
func (r *PostgresChoreRepository) Update(ctx context.Context, chore *models.Chore) (*models.Chore, error) {
	defer observe("chore_update", time.Now())

	updated, err := scanChore(r.pool.QueryRow(ctx,
		`UPDATE chores SET title = $2, cadence = $3 WHERE id = $1 RETURNING `+choreColumns,
		chore.ID, chore.Title, string(chore.Cadence)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrChoreNotFound
		}
		return nil, fmt.Errorf("failed to update chore: %w", err)
	}
	return updated, nil
}

// Delete removes a chore; its assignments go with it.
func (r *PostgresChoreRepository) Delete(ctx context.Context, id int64) error {
	defer observe("chore_delete", time.Now())

	result, err := r.pool.Exec(ctx, `DELETE FROM chores WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete chore: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrChoreNotFound
	}
	return nil
}

// PostgresAssignmentRepository implements AssignmentRepository using PostgreSQL.
type PostgresAssignmentRepository struct {
	pool *database.Pool
}

// NewPostgresAssignmentRepository creates a new PostgreSQL-backed assignment repository.
func NewPostgresAssignmentRepository(pool *database.Pool) *PostgresAssignmentRepository {
	return &PostgresAssignmentRepository{pool: pool}
}

const assignmentColumns = `id, user_id, chore_id, due_at, status, created_at, completed_at`

func scanAssignment(row pgx.Row) (*models.Assignment, error) {
	var a models.Assignment
	var status string
	if err := row.Scan(&a.ID, &a.UserID, &a.ChoreID, &a.DueAt, &status, &a.CreatedAt, &a.CompletedAt); err != nil {
		return nil, err
	}
	a.Status = models.AssignmentStatus(status)
	return &a, nil
}

func collectAssignments(rows pgx.Rows) ([]*models.Assignment, error) {
	defer rows.Close()

	out := make([]*models.Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create stores a pending assignment. A dangling user or chore reference
// maps to the matching not-found error.
func (r *PostgresAssignmentRepository) Create(ctx context.Context, create *models.AssignmentCreate) (*models.Assignment, error) {
	defer observe("assignment_create", time.Now())

	a, err := scanAssignment(r.pool.QueryRow(ctx,
		`INSERT INTO assignments (user_id, chore_id, due_at, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+assignmentColumns,
		create.UserID, create.ChoreID, create.DueAt, string(models.StatusPending)))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == database.ForeignKeyViolation {
			if strings.Contains(pgErr.ConstraintName, "chore") {
				return nil, models.ErrChoreNotFound
			}
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}
	return a, nil
}

// GetByID retrieves an assignment by its ID.
func (r *PostgresAssignmentRepository) GetByID(ctx context.Context, id int64) (*models.Assignment, error) {
	defer observe("assignment_get", time.Now())

	a, err := scanAssignment(r.pool.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return a, nil
}

// List returns assignments matching filter.
func (r *PostgresAssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]*models.Assignment, error) {
	defer observe("assignment_list", time.Now())

	query, args := buildAssignmentQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return collectAssignments(rows)
}

// buildAssignmentQuery renders a parameterized listing for the set filter fields.
func buildAssignmentQuery(filter models.AssignmentFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		conds = append(conds, column+" = $"+strconv.Itoa(len(args)))
	}

	if filter.UserID != nil {
		add("user_id", *filter.UserID)
	}
	if filter.ChoreID != nil {
		add("chore_id", *filter.ChoreID)
	}
	if filter.Status != nil {
		add("status", string(*filter.Status))
	}

	query := `SELECT ` + assignmentColumns + ` FROM assignments`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	return query + ` ORDER BY id`, args
}

// ListOverdue returns non-completed assignments due before now.
func (r *PostgresAssignmentRepository) ListOverdue(ctx context.Context, now time.Time) ([]*models.Assignment, error) {
	defer observe("assignment_list_overdue", time.Now())

	rows, err := r.pool.Query(ctx,
		`SELECT `+assignmentColumns+` FROM assignments
		 WHERE status <> $1 AND due_at < $2
		 ORDER BY due_at, id`,
		string(models.StatusCompleted), now)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue assignments: %w", err)
	}
	return collectAssignments(rows)
}

// Update persists status and completion time.
func (r *PostgresAssignmentRepository) Update(ctx context.Context, a *models.Assignment) (*models.Assignment, error) {
	defer observe("assignment_update", time.Now())

	updated, err := scanAssignment(r.pool.QueryRow(ctx,
		`UPDATE assignments SET status = $2, completed_at = $3 WHERE id = $1 RETURNING `+assignmentColumns,
		a.ID, string(a.Status), a.CompletedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to update assignment: %w", err)
	}
	return updated, nil
}

// Delete removes an assignment.
func (r *PostgresAssignmentRepository) Delete(ctx context.Context, id int64) error {
	defer observe("assignment_delete", time.Now())

	result, err := r.pool.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrAssignmentNotFound
	}
	return nil
}

// Statistics aggregates all assignments in a single pass.
func (r *PostgresAssignmentRepository) Statistics(ctx context.Context, now time.Time) (*models.Statistics, error) {
	defer observe("assignment_statistics", time.Now())

	var total, completed, pending, overdue int64
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status <> $1 AND due_at < $3)
		FROM assignments`,
		string(models.StatusCompleted), string(models.StatusPending), now,
	).Scan(&total, &completed, &pending, &overdue)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate assignments: %w", err)
	}

	stats := models.NewStatistics(total, completed, pending, overdue)
	return &stats, nil
}
