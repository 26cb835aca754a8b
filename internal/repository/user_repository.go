package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/utils"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown
// username or a wrong password.  The two cases are not distinguished.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepo stores registered customers, guests and administrators in
// memory.  Usernames are unique and compared case-insensitively.
type UserRepo struct {
	mu         sync.RWMutex
	nextID     uint64
	users      map[uint64]*model.User
	byUsername map[string]uint64
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		nextID:     1,
		users:      make(map[uint64]*model.User),
		byUsername: make(map[string]uint64),
	}
}

func cloneUser(u *model.User) *model.User {
	cp := *u
	cp.BookingIDs = append([]string(nil), u.BookingIDs...)
	return &cp
}

func normalizeUsername(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Create registers a user with credentials.  The password is hashed with
// bcrypt at the given cost.
func (r *UserRepo) Create(ctx context.Context, username, password, fullName, email, phone string, isAdmin bool, cost int) (*model.User, error) {
	key := normalizeUsername(username)
	if key == "" {
		return nil, ErrInvalidCredentials
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byUsername[key]; taken {
		return nil, ErrUsernameTaken
	}
	u := &model.User{
		ID:           r.nextID,
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
		FullName:     fullName,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Phone:        phone,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	r.nextID++
	r.users[u.ID] = u
	r.byUsername[key] = u.ID
	return cloneUser(u), nil
}

// CreateGuest stores a customer without credentials.
func (r *UserRepo) CreateGuest(ctx context.Context, fullName, email, phone string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := &model.User{
		ID:        r.nextID,
		FullName:  fullName,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Phone:     phone,
		CreatedAt: time.Now().UTC(),
	}
	r.nextID++
	r.users[u.ID] = u
	return cloneUser(u), nil
}

// Authenticate returns the user whose username and password match.
// Guests can never authenticate.
func (r *UserRepo) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	r.mu.RLock()
	id, ok := r.byUsername[normalizeUsername(username)]
	var u *model.User
	if ok {
		u = cloneUser(r.users[id])
	}
	r.mu.RUnlock()
	if u == nil || !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetByID returns a copy of the user or ErrUserNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(u), nil
}

// List returns all users ordered by ID.
func (r *UserRepo) List(ctx context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AddBooking appends a finalized booking id to the user's list.
func (r *UserRepo) AddBooking(ctx context.Context, userID uint64, bookingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.BookingIDs = append(u.BookingIDs, bookingID)
	return nil
}
