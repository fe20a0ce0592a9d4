package memory

import (
	"context"
	"strings"
	"sync"

	domainuser "healthtrack/internal/domain/user"
)

// UserRepository keeps accounts in process memory, indexed by id and by
// normalized email. Values are copied on the way in and out.
type UserRepository struct {
	mu      sync.RWMutex
	users   map[domainuser.ID]domainuser.User
	byEmail map[string]domainuser.ID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[domainuser.ID]domainuser.User),
		byEmail: make(map[string]domainuser.ID),
	}
}

func (r *UserRepository) ByID(_ context.Context, id domainuser.ID) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(id)
}

func (r *UserRepository) ByEmail(_ context.Context, email string) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(r.byEmail[domainuser.NormalizeEmail(email)])
}

func (r *UserRepository) lookup(id domainuser.ID) (*domainuser.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) Save(_ context.Context, u *domainuser.User) error {
	switch {
	case u == nil || strings.TrimSpace(string(u.ID)) == "":
		return domainuser.ErrIDRequired
	case domainuser.NormalizeEmail(u.Email) == "":
		return domainuser.ErrEmailRequired
	}
	email := domainuser.NormalizeEmail(u.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	if holder, taken := r.byEmail[email]; taken && holder != u.ID {
		return domainuser.ErrEmailAlreadyUsed
	}
	if prev, ok := r.users[u.ID]; ok {
		delete(r.byEmail, domainuser.NormalizeEmail(prev.Email))
	}
	r.users[u.ID] = *u
	r.byEmail[email] = u.ID
	return nil
}

var _ domainuser.Repository = (*UserRepository)(nil)
