package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/user/tareas-go/apperror"
)

// MemoryService is an in-process credential store implementing the same
// Service contract as PGService. It exists for tests and backs the handler
// suites; it deliberately uses bcrypt.MinCost so suites stay fast.
type MemoryService struct {
	mu     sync.RWMutex
	nextID int
	byName map[string]*User
	byID   map[int]*User
}

// NewMemoryService creates an empty in-memory credential store.
func NewMemoryService() *MemoryService {
	return &MemoryService{
		nextID: 1,
		byName: make(map[string]*User),
		byID:   make(map[int]*User),
	}
}

// Register creates a new user. A taken username fails with a ConflictError,
// exactly as the PostgreSQL store maps its unique violation.
func (s *MemoryService) Register(ctx context.Context, username, password string) (*User, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byName[username]; taken {
		return nil, apperror.NewConflictError("username already exists", nil)
	}

	user := &User{
		ID:           s.nextID,
		Username:     username,
		PasswordHash: string(hashed),
		CreatedAt:    time.Now(),
	}
	s.nextID++
	s.byName[username] = user
	s.byID[user.ID] = user

	copied := *user
	return &copied, nil
}

// VerifyCredentials authenticates a username/password pair.
func (s *MemoryService) VerifyCredentials(ctx context.Context, username, password string) (*User, error) {
	s.mu.RLock()
	user, ok := s.byName[username]
	s.mu.RUnlock()

	if !ok {
		return nil, apperror.NewAuthError("invalid credentials", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.NewAuthError("invalid credentials", nil)
	}

	copied := *user
	return &copied, nil
}

// GetUserByID retrieves a user by their id.
func (s *MemoryService) GetUserByID(ctx context.Context, id int) (*User, error) {
	s.mu.RLock()
	user, ok := s.byID[id]
	s.mu.RUnlock()

	if !ok {
		return nil, apperror.NewNotFoundError("user not found", nil)
	}
	copied := *user
	return &copied, nil
}
