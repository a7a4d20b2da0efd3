// Package mocks holds in-memory repositories for handler and view tests.
package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"eventhub/models"
	"eventhub/utils"
)

/* -------------------- Roles -------------------- */

type RoleRepo struct {
	mu    sync.Mutex
	Roles map[string]models.Role
	Err   error // returned by every lookup when set
}

func NewRoleRepo() *RoleRepo { return &RoleRepo{Roles: map[string]models.Role{}} }

func (m *RoleRepo) RoleFor(_ context.Context, userID string) (models.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	r, ok := m.Roles[userID]
	if !ok {
		return "", models.ErrNotFound
	}
	return r, nil
}

// Rows returns how many role rows userID has (0 or 1).
func (m *RoleRepo) Rows(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Roles[userID]; ok {
		return 1
	}
	return 0
}

func (m *RoleRepo) set(userID string, r models.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Roles[userID] = r
}

/* -------------------- Users -------------------- */

// UserRepo keys users by email and writes role rows into Roles.
type UserRepo struct {
	mu    sync.Mutex
	Users map[string]models.User
	Roles *RoleRepo
}

func NewUserRepo(roles *RoleRepo) *UserRepo {
	return &UserRepo{Users: map[string]models.User{}, Roles: roles}
}

func (m *UserRepo) Create(_ context.Context, u *models.User, role models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if _, ok := m.Users[u.Email]; ok {
		return models.ErrEmailTaken
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	m.Users[u.Email] = *u
	if m.Roles != nil {
		m.Roles.set(u.ID, role)
	}
	return nil
}

func (m *UserRepo) ValidateCredentials(_ context.Context, email, plain string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[strings.ToLower(strings.TrimSpace(email))]
	if !ok || !utils.CheckPasswordHash(plain, u.Password) {
		return models.User{}, models.ErrInvalidCredentials
	}
	u.Password = ""
	return u, nil
}

func (m *UserRepo) GetByID(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.ID == id {
			u.Password = ""
			return u, nil
		}
	}
	return models.User{}, models.ErrNotFound
}

/* -------------------- Events -------------------- */

type EventRepo struct {
	mu    sync.Mutex
	Items map[string]models.Event
	Err   error

	calls atomic.Int64
}

func NewEventRepo(events ...models.Event) *EventRepo {
	m := &EventRepo{Items: map[string]models.Event{}}
	for _, e := range events {
		m.Items[e.ID] = e
	}
	return m
}

// Calls counts every method invocation.
func (m *EventRepo) Calls() int64 { return m.calls.Load() }

func (m *EventRepo) sorted(keep func(models.Event) bool) []models.Event {
	out := make([]models.Event, 0, len(m.Items))
	for _, e := range m.Items {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out
}

func (m *EventRepo) ListUpcoming(_ context.Context, limit int) ([]models.Event, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := m.sorted(func(models.Event) bool { return true })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *EventRepo) ListByOrganiser(_ context.Context, organiserID string) ([]models.Event, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.sorted(func(e models.Event) bool { return e.OrganiserID == organiserID }), nil
}

func (m *EventRepo) GetByID(_ context.Context, id string) (models.Event, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Event{}, m.Err
	}
	e, ok := m.Items[id]
	if !ok {
		return models.Event{}, models.ErrNotFound
	}
	return e, nil
}

func (m *EventRepo) Create(_ context.Context, e *models.Event) error {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	m.Items[e.ID] = *e
	return nil
}

func (m *EventRepo) Update(_ context.Context, e *models.Event) error {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Items[e.ID]; !ok {
		return models.ErrNotFound
	}
	m.Items[e.ID] = *e
	return nil
}

func (m *EventRepo) Delete(_ context.Context, id string) error {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Items[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.Items, id)
	return nil
}

/* ---------------- Registrations ---------------- */

// RegRepo enforces the same uniqueness and capacity rules as the SQL ledger.
type RegRepo struct {
	mu    sync.Mutex
	rows  map[string][]string // event id -> user ids in registration order
	calls atomic.Int64

	// FailNext is returned, once, by the next write.
	FailNext error
}

func NewRegRepo() *RegRepo { return &RegRepo{rows: map[string][]string{}} }

func (m *RegRepo) Calls() int64 { return m.calls.Load() }

func (m *RegRepo) failure() error {
	err := m.FailNext
	m.FailNext = nil
	return err
}

func (m *RegRepo) index(eventID, userID string) int {
	for i, u := range m.rows[eventID] {
		if u == userID {
			return i
		}
	}
	return -1
}

func (m *RegRepo) Register(_ context.Context, eventID, userID string, capacity *int) error {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return err
	}
	if m.index(eventID, userID) >= 0 {
		return models.ErrAlreadyRegistered
	}
	if capacity != nil && len(m.rows[eventID]) >= *capacity {
		return models.ErrEventFull
	}
	m.rows[eventID] = append(m.rows[eventID], userID)
	return nil
}

func (m *RegRepo) Unregister(_ context.Context, eventID, userID string) error {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return err
	}
	i := m.index(eventID, userID)
	if i < 0 {
		return models.ErrNotRegistered
	}
	m.rows[eventID] = append(m.rows[eventID][:i], m.rows[eventID][i+1:]...)
	return nil
}

func (m *RegRepo) CountFor(_ context.Context, eventID string) (int, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows[eventID]), nil
}

func (m *RegRepo) IsRegistered(_ context.Context, eventID, userID string) (bool, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index(eventID, userID) >= 0, nil
}

func (m *RegRepo) CountForMany(_ context.Context, eventIDs []string) (int, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, id := range eventIDs {
		total += len(m.rows[id])
	}
	return total, nil
}

func (m *RegRepo) CountsFor(_ context.Context, eventIDs []string) (map[string]int, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(eventIDs))
	for _, id := range eventIDs {
		out[id] = len(m.rows[id])
	}
	return out, nil
}

func (m *RegRepo) EventIDsFor(_ context.Context, userID string) ([]string, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for eid := range m.rows {
		if m.index(eid, userID) >= 0 {
			ids = append(ids, eid)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *RegRepo) DeleteForEvent(_ context.Context, eventID string) error {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return err
	}
	delete(m.rows, eventID)
	return nil
}
