package user

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// Create fails with ErrUserExists when the id or the email is taken.
	Create(ctx context.Context, user *User) error
	// UpdateProfile fails with ErrEmailTaken when the new email is taken.
	UpdateProfile(ctx context.Context, user *User) error
}
