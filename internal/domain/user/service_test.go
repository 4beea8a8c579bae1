package user

import (
	"context"
	"testing"
	"time"
)

type fakeUserRepo struct {
	users       map[string]*User
	createCalls int
	// raceOnce makes the first Create fail as if a concurrent request won.
	raceOnce bool
	// emailRaceOnce makes the first Create fail as if another user had just
	// claimed the same email.
	emailRaceOnce bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*User)}
}

func (r *fakeUserRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, user := range r.users {
		if user.Email != nil && *user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *fakeUserRepo) emailHeldByOther(user *User) bool {
	if user.Email == nil {
		return false
	}
	holder, err := r.GetByEmail(context.Background(), *user.Email)
	return err == nil && holder.ID != user.ID
}

func (r *fakeUserRepo) Create(ctx context.Context, user *User) error {
	r.createCalls++
	if r.raceOnce {
		r.raceOnce = false
		winner := *user
		winner.Role = RoleAdmin
		r.users[user.ID] = &winner
		return ErrUserExists
	}
	if r.emailRaceOnce && user.Email != nil {
		r.emailRaceOnce = false
		email := *user.Email
		r.users["racer"] = &User{ID: "racer", Email: &email, Role: RoleUser}
		return ErrUserExists
	}
	if _, ok := r.users[user.ID]; ok || r.emailHeldByOther(user) {
		return ErrUserExists
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, user *User) error {
	existing, ok := r.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}
	if r.emailHeldByOther(user) {
		return ErrEmailTaken
	}
	role := existing.Role
	copied := *user
	copied.Role = role
	r.users[user.ID] = &copied
	return nil
}

func TestSyncCreatesUserOnFirstLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)

	user, result, err := svc.Sync(context.Background(), Identity{
		ID:    "user-1",
		Email: "ana@example.com",
		Name:  "Ana Maria Lopez",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result != SyncCreated {
		t.Fatalf("expected created, got %q", result)
	}
	if user.Role != RoleUser {
		t.Fatalf("expected default role, got %q", user.Role)
	}
	if user.FirstName == nil || *user.FirstName != "Ana" {
		t.Fatalf("expected first name Ana, got %v", user.FirstName)
	}
	if user.LastName == nil || *user.LastName != "Maria Lopez" {
		t.Fatalf("expected last name, got %v", user.LastName)
	}
	if user.DisplayName() != "Ana Maria Lopez" {
		t.Fatalf("unexpected display name %q", user.DisplayName())
	}
}

func TestSyncRefreshesExistingUserAndKeepsRole(t *testing.T) {
	repo := newFakeUserRepo()
	email := "old@example.com"
	repo.users["user-1"] = &User{ID: "user-1", Email: &email, Role: RoleAdmin, CreatedAt: time.Unix(0, 0)}
	svc := NewService(repo)

	user, result, err := svc.Sync(context.Background(), Identity{ID: "user-1", Email: "new@example.com", AvatarURL: "https://img/a.png"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result != SyncRefreshed {
		t.Fatalf("expected refreshed, got %q", result)
	}
	if user.Role != RoleAdmin {
		t.Fatalf("expected role preserved, got %q", user.Role)
	}
	if *repo.users["user-1"].Email != "new@example.com" {
		t.Fatalf("expected email refreshed, got %q", *repo.users["user-1"].Email)
	}
	if repo.createCalls != 0 {
		t.Fatalf("expected no create, got %d", repo.createCalls)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	identity := Identity{ID: "user-1", Email: "ana@example.com"}

	if _, _, err := svc.Sync(context.Background(), identity); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	_, result, err := svc.Sync(context.Background(), identity)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if result != SyncRefreshed {
		t.Fatalf("expected refreshed on second sync, got %q", result)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected one user, got %d", len(repo.users))
	}
}

func TestSyncRetriesAfterConcurrentCreate(t *testing.T) {
	repo := newFakeUserRepo()
	repo.raceOnce = true
	svc := NewService(repo)

	user, result, err := svc.Sync(context.Background(), Identity{ID: "user-1", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result != SyncRefreshed {
		t.Fatalf("expected refreshed after race, got %q", result)
	}
	if user.Role != RoleAdmin {
		t.Fatalf("expected winner's role kept, got %q", user.Role)
	}
}

func TestSyncLeavesEmailHeldByAnotherUser(t *testing.T) {
	repo := newFakeUserRepo()
	email := "ana@example.com"
	repo.users["user-1"] = &User{ID: "user-1", Email: &email, Role: RoleUser}
	svc := NewService(repo)
	identity := Identity{ID: "user-2", Email: "ana@example.com", Name: "Ana Lopez"}

	user, result, err := svc.Sync(context.Background(), identity)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result != SyncCreated {
		t.Fatalf("expected created, got %q", result)
	}
	if user.Email != nil {
		t.Fatalf("expected no email stored, got %q", *user.Email)
	}
	if user.FirstName == nil || *user.FirstName != "Ana" {
		t.Fatalf("expected the rest of the profile stored, got %v", user.FirstName)
	}

	_, result, err = svc.Sync(context.Background(), identity)
	if err != nil {
		t.Fatalf("expected later logins to succeed, got %v", err)
	}
	if result != SyncRefreshed {
		t.Fatalf("expected refreshed, got %q", result)
	}
	if *repo.users["user-1"].Email != "ana@example.com" {
		t.Fatalf("expected the holder to keep the email")
	}
}

func TestSyncKeepsCurrentEmailWhenNewOneIsTaken(t *testing.T) {
	repo := newFakeUserRepo()
	taken := "shared@example.com"
	own := "own@example.com"
	repo.users["user-1"] = &User{ID: "user-1", Email: &taken, Role: RoleUser}
	repo.users["user-2"] = &User{ID: "user-2", Email: &own, Role: RoleUser}
	svc := NewService(repo)

	user, _, err := svc.Sync(context.Background(), Identity{ID: "user-2", Email: taken})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Email == nil || *user.Email != own {
		t.Fatalf("expected current email kept, got %v", user.Email)
	}
}

func TestSyncRetriesAfterEmailClaimedConcurrently(t *testing.T) {
	repo := newFakeUserRepo()
	repo.emailRaceOnce = true
	svc := NewService(repo)

	user, result, err := svc.Sync(context.Background(), Identity{ID: "user-1", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result != SyncCreated {
		t.Fatalf("expected created on retry, got %q", result)
	}
	if user.Email != nil {
		t.Fatalf("expected email left to the concurrent holder, got %q", *user.Email)
	}
	if repo.createCalls != 2 {
		t.Fatalf("expected one retry, got %d creates", repo.createCalls)
	}
}

func TestSyncRequiresID(t *testing.T) {
	svc := NewService(newFakeUserRepo())
	if _, _, err := svc.Sync(context.Background(), Identity{ID: "  "}); err == nil {
		t.Fatalf("expected error for empty id")
	}
}
