package service

import (
	"errors"
	"testing"
	"time"

	"coursehub_backend/internal/config"
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/util"
)

func authServiceFixture(t *testing.T) *AuthService {
	t.Helper()
	db := newTestDB(t)
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-long-enough-for-hs256!!"
	cfg.JWT.ExpireTime = time.Hour
	return NewAuthService(repository.NewUserRepository(db), cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := authServiceFixture(t)

	user, err := svc.Register(RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter22",
		Role:     "teacher",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != model.Teacher {
		t.Errorf("role = %q, want teacher", user.Role)
	}
	if user.Password == "hunter22" {
		t.Error("password stored in plain text")
	}

	token, logged, err := svc.Login(LoginRequest{Email: "ada@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" || logged.ID != user.ID {
		t.Errorf("login returned token=%q user=%d", token, logged.ID)
	}

	claims, err := util.ParseJWT(token, svc.Config.JWT.Secret)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != model.Teacher {
		t.Errorf("claims = %+v", claims)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := authServiceFixture(t)

	req := RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "hunter22"}
	if _, err := svc.Register(req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(req); !errors.Is(err, util.ErrEmailRegistered) {
		t.Fatalf("second register: want ErrEmailRegistered, got %v", err)
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc := authServiceFixture(t)

	_, err := svc.Register(RegisterRequest{Name: "Eve", Email: "eve@example.com", Password: "hunter22", Role: "admin"})
	if !util.IsValidation(err) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := authServiceFixture(t)

	if _, err := svc.Register(RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "hunter22"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(LoginRequest{Email: "ada@example.com", Password: "wrong"}); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Errorf("wrong password: want ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(LoginRequest{Email: "ghost@example.com", Password: "x"}); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Errorf("unknown email: want ErrInvalidCredentials, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := authServiceFixture(t)

	user, err := svc.Register(RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := svc.UpdateProfile(user.ID, UpdateProfileRequest{Name: "Ada L.", Bio: "likes Go", Portfolio: "https://ada.dev"})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Name != "Ada L." || updated.Bio != "likes Go" {
		t.Errorf("updated = %+v", updated)
	}

	if _, err := svc.UpdateProfile(9999, UpdateProfileRequest{}); !errors.Is(err, util.ErrUserNotFound) {
		t.Errorf("missing user: want ErrUserNotFound, got %v", err)
	}
}
