package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/choretracker/choretracker/internal/models"
)

// memoryDB is the shared state of the in-memory repositories. A single
// lock covers all tables so cascading deletes stay atomic.
type memoryDB struct {
	mu  sync.RWMutex
	now func() time.Time

	users       map[int64]*models.User
	chores      map[int64]*models.Chore
	assignments map[int64]*models.Assignment

	nextUserID       int64
	nextChoreID      int64
	nextAssignmentID int64
}

// MemoryOption configures the in-memory store.
type MemoryOption func(*memoryDB)

// WithMemoryClock overrides the creation timestamp source.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(db *memoryDB) {
		db.now = now
	}
}

// NewMemoryStore builds a Store kept entirely in process memory.
func NewMemoryStore(opts ...MemoryOption) *Store {
	db := &memoryDB{
		now:         time.Now,
		users:       make(map[int64]*models.User),
		chores:      make(map[int64]*models.Chore),
		assignments: make(map[int64]*models.Assignment),
	}
	for _, opt := range opts {
		opt(db)
	}

	return &Store{
		Users:       &MemoryUserRepository{db: db},
		Chores:      &MemoryChoreRepository{db: db},
		Assignments: &MemoryAssignmentRepository{db: db},
		Backend:     "memory",
	}
}

func (db *memoryDB) cascade(match func(*models.Assignment) bool) {
	for id, a := range db.assignments {
		if match(a) {
			delete(db.assignments, id)
		}
	}
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func copyChore(ch *models.Chore) *models.Chore {
	c := *ch
	return &c
}

func copyAssignment(a *models.Assignment) *models.Assignment {
	c := *a
	if a.CompletedAt != nil {
		t := *a.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// MemoryUserRepository implements UserRepository in memory.
type MemoryUserRepository struct {
	db *memoryDB
}

func (r *MemoryUserRepository) emailTaken(email string, exceptID int64) bool {
	for _, u := range r.db.users {
		if u.ID != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

// Create stores a new user.
func (r *MemoryUserRepository) Create(_ context.Context, create *models.UserCreate) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.emailTaken(create.Email, 0) {
		return nil, models.ErrEmailTaken
	}

	r.db.nextUserID++
	u := &models.User{
		ID:        r.db.nextUserID,
		Name:      create.Name,
		Email:     create.Email,
		CreatedAt: r.db.now().UTC(),
	}
	r.db.users[u.ID] = u
	return copyUser(u), nil
}

// GetByID retrieves a user by its ID.
func (r *MemoryUserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return copyUser(u), nil
}

// GetByEmail retrieves a user by email, case-insensitively.
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, models.ErrUserNotFound
}

// List returns every user ordered by ID.
func (r *MemoryUserRepository) List(_ context.Context) ([]*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]*models.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		out = append(out, copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update persists the name and email of user.
func (r *MemoryUserRepository) Update(_ context.Context, user *models.User) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.users[user.ID]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	if r.emailTaken(user.Email, user.ID) {
		return nil, models.ErrEmailTaken
	}

	existing.Name = user.Name
	existing.Email = user.Email
	return copyUser(existing), nil
}

// Delete removes a user and its assignments.
func (r *MemoryUserRepository) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[id]; !ok {
		return models.ErrUserNotFound
	}
	delete(r.db.users, id)
	r.db.cascade(func(a *models.Assignment) bool { return a.UserID == id })
	return nil
}

// MemoryChoreRepository implements ChoreRepository in memory.
type MemoryChoreRepository struct {
	db *memoryDB
}

// Create stores a new chore.
func (r *MemoryChoreRepository) Create(_ context.Context, create *models.ChoreCreate) (*models.Chore, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.nextChoreID++
	c := &models.Chore{
		ID:        r.db.nextChoreID,
		Title:     create.Title,
		Cadence:   create.Cadence,
		CreatedAt: r.db.now().UTC(),
	}
	r.db.chores[c.ID] = c
	return copyChore(c), nil
}

// GetByID retrieves a chore by its ID.
func (r *MemoryChoreRepository) GetByID(_ context.Context, id int64) (*models.Chore, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	c, ok := r.db.chores[id]
	if !ok {
		return nil, models.ErrChoreNotFound
	}
	return copyChore(c), nil
}

// List returns every chore ordered by ID.
func (r *MemoryChoreRepository) List(_ context.Context) ([]*models.Chore, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]*models.Chore, 0, len(r.db.chores))
	for _, c := range r.db.chores {
		out = append(out, copyChore(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update persists the title and cadence of chore.
func (r *MemoryChoreRepository) Update(_ context.Context, chore *models.Chore) (*models.Chore, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.chores[chore.ID]
	if !ok {
		return nil, models.ErrChoreNotFound
	}
	existing.Title = chore.Title
	existing.Cadence = chore.Cadence
	return copyChore(existing), nil
}

// Delete removes a chore and its assignments.
func (r *MemoryChoreRepository) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.chores[id]; !ok {
		return models.ErrChoreNotFound
	}
	delete(r.db.chores, id)
	r.db.cascade(func(a *models.Assignment) bool { return a.ChoreID == id })
	return nil
}

// MemoryAssignmentRepository implements AssignmentRepository in memory.
type MemoryAssignmentRepository struct {
	db *memoryDB
}

// Create stores a pending assignment. References are checked like foreign keys.
func (r *MemoryAssignmentRepository) Create(_ context.Context, create *models.AssignmentCreate) (*models.Assignment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[create.UserID]; !ok {
		return nil, models.ErrUserNotFound
	}
	if _, ok := r.db.chores[create.ChoreID]; !ok {
		return nil, models.ErrChoreNotFound
	}

	r.db.nextAssignmentID++
	a := &models.Assignment{
		ID:        r.db.nextAssignmentID,
		UserID:    create.UserID,
		ChoreID:   create.ChoreID,
		DueAt:     create.DueAt.UTC(),
		Status:    models.StatusPending,
		CreatedAt: r.db.now().UTC(),
	}
	r.db.assignments[a.ID] = a
	return copyAssignment(a), nil
}

// GetByID retrieves an assignment by its ID.
func (r *MemoryAssignmentRepository) GetByID(_ context.Context, id int64) (*models.Assignment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	a, ok := r.db.assignments[id]
	if !ok {
		return nil, models.ErrAssignmentNotFound
	}
	return copyAssignment(a), nil
}

func (r *MemoryAssignmentRepository) collect(match func(*models.Assignment) bool) []*models.Assignment {
	out := make([]*models.Assignment, 0)
	for _, a := range r.db.assignments {
		if match(a) {
			out = append(out, copyAssignment(a))
		}
	}
	return out
}

// List returns assignments matching filter, ordered by ID.
func (r *MemoryAssignmentRepository) List(_ context.Context, filter models.AssignmentFilter) ([]*models.Assignment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := r.collect(filter.Matches)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListOverdue returns non-completed assignments due before now, earliest first.
func (r *MemoryAssignmentRepository) ListOverdue(_ context.Context, now time.Time) ([]*models.Assignment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := r.collect(func(a *models.Assignment) bool { return a.IsOverdue(now) })
	sort.Slice(out, func(i, j int) bool {
		if out[i].DueAt.Equal(out[j].DueAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].DueAt.Before(out[j].DueAt)
	})
	return out, nil
}

// Update persists status and completion time.
func (r *MemoryAssignmentRepository) Update(_ context.Context, a *models.Assignment) (*models.Assignment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.assignments[a.ID]
	if !ok {
		return nil, models.ErrAssignmentNotFound
	}
	updated := copyAssignment(a)
	existing.Status = updated.Status
	existing.CompletedAt = updated.CompletedAt
	return copyAssignment(existing), nil
}

// Delete removes an assignment.
func (r *MemoryAssignmentRepository) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.assignments[id]; !ok {
		return models.ErrAssignmentNotFound
	}
	delete(r.db.assignments, id)
	return nil
}

// Statistics aggregates every assignment as of now.
func (r *MemoryAssignmentRepository) Statistics(_ context.Context, now time.Time) (*models.Statistics, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var total, completed, pending, overdue int64
	for _, a := range r.db.assignments {
		total++
		switch a.Status {
		case models.StatusCompleted:
			completed++
		case models.StatusPending:
			pending++
		}
		if a.IsOverdue(now) {
			overdue++
		}
	}

	stats := models.NewStatistics(total, completed, pending, overdue)
	return &stats, nil
}
