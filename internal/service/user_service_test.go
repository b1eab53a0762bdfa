package service

import (
	"context"
	"errors"
	"testing"

	"github.com/collegecms/internal/db"
)

func TestUserServiceAuthenticate(t *testing.T) {
	gdb := setupServiceTestDB(t)
	if err := db.EnsureUser(gdb, "registrar", "s3cret"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	svc := NewUserService(gdb)
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, "registrar", "s3cret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if !user.IsStaff || user.Username != "registrar" {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := svc.Authenticate(ctx, "registrar", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}

	loaded, err := svc.Get(ctx, user.ID)
	if err != nil || loaded.Username != "registrar" {
		t.Fatalf("get user: %+v %v", loaded, err)
	}
	if _, err := svc.Get(ctx, 999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
