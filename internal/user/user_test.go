package user

import (
	"context"
	"errors"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	u := &User{PasswordHash: hash}
	if err := u.CheckPassword("correct-horse-battery"); err != nil {
		t.Errorf("expected password to match, got %v", err)
	}
	if err := u.CheckPassword("wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestHashPasswordTooShort(t *testing.T) {
	if _, err := HashPassword("short"); err == nil {
		t.Error("expected error for password under 8 characters")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		user    User
		wantErr bool
	}{
		{"valid user", User{Email: "a@example.com", PasswordHash: "h", Role: RoleUser}, false},
		{"valid admin", User{Email: "a@example.com", PasswordHash: "h", Role: RoleAdmin}, false},
		{"missing email", User{PasswordHash: "h", Role: RoleUser}, true},
		{"malformed email", User{Email: "not-an-email", PasswordHash: "h", Role: RoleUser}, true},
		{"missing hash", User{Email: "a@example.com", Role: RoleUser}, true},
		{"bad role", User{Email: "a@example.com", PasswordHash: "h", Role: "root"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInMemoryInsertAndLookup(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	u := &User{Email: "Etudiant@Example.com", PasswordHash: "hash", Role: RoleUser}
	if err := repo.Insert(ctx, u); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if u.ID == "" {
		t.Error("expected generated ID")
	}

	got, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Email != "etudiant@example.com" {
		t.Errorf("expected normalized email, got %q", got.Email)
	}

	// Lookup is case-insensitive.
	got, err = repo.GetByEmail(ctx, "ETUDIANT@example.COM")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("expected same user, got %q", got.ID)
	}
}

func TestInMemoryDuplicateEmail(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	first := &User{Email: "dup@example.com", PasswordHash: "hash", Role: RoleUser}
	if err := repo.Insert(ctx, first); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	second := &User{Email: "DUP@example.com", PasswordHash: "hash", Role: RoleUser}
	if err := repo.Insert(ctx, second); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestInMemoryUpdate(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	u := &User{Email: "old@example.com", PasswordHash: "hash", Role: RoleUser}
	if err := repo.Insert(ctx, u); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	created := u.CreatedAt

	u.Name = "Camille"
	u.Email = "new@example.com"
	if err := repo.Update(ctx, u); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repo.GetByEmail(ctx, "new@example.com")
	if err != nil {
		t.Fatalf("GetByEmail after update failed: %v", err)
	}
	if got.Name != "Camille" {
		t.Errorf("expected updated name, got %q", got.Name)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("expected CreatedAt preserved, got %v", got.CreatedAt)
	}
	if _, err := repo.GetByEmail(ctx, "old@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected old email unindexed, got %v", err)
	}
}

func TestInMemoryUpdateEmailTaken(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	first := &User{Email: "first@example.com", PasswordHash: "hash", Role: RoleUser}
	second := &User{Email: "second@example.com", PasswordHash: "hash", Role: RoleUser}
	for _, u := range []*User{first, second} {
		if err := repo.Insert(ctx, u); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	second.Email = "FIRST@example.com"
	if err := repo.Update(ctx, second); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestInMemoryUpdateNotFound(t *testing.T) {
	repo := NewInMemoryRepository()

	u := &User{ID: "missing", Email: "x@example.com", PasswordHash: "hash", Role: RoleUser}
	if err := repo.Update(context.Background(), u); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryNotFound(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByEmail(ctx, "missing@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
