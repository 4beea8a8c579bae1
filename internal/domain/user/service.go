package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrUserNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Sync reconciles the stored user with what the identity provider asserts.
// A missing row is created with the default role; an existing row has its
// profile fields refreshed and keeps its role. An email already held by
// another user is not stored: a new row gets none and an existing row keeps
// its current one.
func (s *Service) Sync(ctx context.Context, identity Identity) (*User, SyncResult, error) {
	synced, result, err := s.sync(ctx, identity)
	if errors.Is(err, ErrUserExists) || errors.Is(err, ErrEmailTaken) {
		// Lost a race with a concurrent login claiming the id or the email;
		// the winning row is visible now.
		synced, result, err = s.sync(ctx, identity)
	}
	return synced, result, err
}

func (s *Service) sync(ctx context.Context, identity Identity) (*User, SyncResult, error) {
	id := strings.TrimSpace(identity.ID)
	if id == "" {
		return nil, "", fmt.Errorf("user id is required")
	}

	var (
		synced *User
		result SyncResult
	)

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		existing, err := tx.GetByID(ctx, id)
		if err != nil && !errors.Is(err, ErrUserNotFound) {
			return err
		}

		email, err := claimableEmail(ctx, tx, id, identity.Email)
		if err != nil {
			return err
		}

		now := s.now()
		if existing == nil {
			created := &User{
				ID:        id,
				Role:      RoleUser,
				CreatedAt: now,
				UpdatedAt: now,
			}
			applyIdentity(created, identity, email)
			if err := tx.Create(ctx, created); err != nil {
				return err
			}
			synced = created
			result = SyncCreated
			return nil
		}

		applyIdentity(existing, identity, email)
		existing.UpdatedAt = now
		if err := tx.UpdateProfile(ctx, existing); err != nil {
			return err
		}
		synced = existing
		result = SyncRefreshed
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	return synced, result, nil
}

// claimableEmail returns the asserted email, or "" when it is blank or
// another user already holds it.
func claimableEmail(ctx context.Context, tx Repository, id, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", nil
	}
	holder, err := tx.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return email, nil
	case err != nil:
		return "", err
	case holder.ID != id:
		return "", nil
	}
	return email, nil
}

func applyIdentity(u *User, identity Identity, email string) {
	if email != "" {
		u.Email = &email
	}
	if avatar := strings.TrimSpace(identity.AvatarURL); avatar != "" {
		u.ProfileImageURL = &avatar
	}
	if name := strings.TrimSpace(identity.Name); name != "" {
		first, last := splitName(name)
		u.FirstName = &first
		if last != "" {
			u.LastName = &last
		} else {
			u.LastName = nil
		}
	}
}

func splitName(name string) (string, string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
