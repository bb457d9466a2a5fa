package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Hash      []byte
	Role      string
	CreatedAt time.Time
}

type NewUser struct {
	ID        string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

type UserStore interface {
	Create(ctx context.Context, u NewUser) (User, error)
	Verify(ctx context.Context, email, password string) (User, error)
	Get(ctx context.Context, id string) (User, error)
	Ping(ctx context.Context) error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizePassword(password string) string {
	return strings.TrimSpace(password)
}

// EnsureAdmin registers the admin account if its email is still free. An
// existing account with that email is left as it is and created is false.
func EnsureAdmin(ctx context.Context, s UserStore, id, email, password string) (created bool, err error) {
	_, err = s.Create(ctx, NewUser{
		ID:        id,
		Email:     email,
		Password:  password,
		FirstName: "Admin",
		Role:      RoleAdmin,
	})
	switch {
	case errors.Is(err, ErrEmailExists):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}
