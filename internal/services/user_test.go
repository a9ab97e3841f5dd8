package services

import (
	"errors"
	"testing"

	"github.com/biou/admin-console/internal/models"
	"github.com/biou/admin-console/internal/store"
	"github.com/biou/admin-console/internal/utils"
	"github.com/biou/admin-console/pkg/response"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	return NewUserService(newTestDB(t), nil)
}

func TestUserCreate(t *testing.T) {
	svc := newUserService(t)

	user, err := svc.Create(&UserCreateRequest{
		Username: "alice",
		Password: "secret123",
		Email:    "alice@example.com",
		RealName: "Alice",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if user.ID == 0 {
		t.Error("expected an assigned ID")
	}
	if user.Password == "secret123" {
		t.Error("password must be stored hashed")
	}
	if !utils.CheckPassword("secret123", user.Password) {
		t.Error("stored hash does not match the password")
	}
	if user.Status != models.UserEnabled {
		t.Errorf("Status = %d, expected enabled", user.Status)
	}
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	svc := newUserService(t)

	if _, err := svc.Create(&UserCreateRequest{Username: "alice", Password: "secret123"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := svc.Create(&UserCreateRequest{Username: "alice", Password: "other456"})
	if err == nil {
		t.Fatal("expected duplicate username to be rejected")
	}
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.Code != 409 {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	svc := newUserService(t)

	if _, err := svc.Create(&UserCreateRequest{Username: "alice", Password: "secret123", Email: "a@example.com"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := svc.Create(&UserCreateRequest{Username: "bob", Password: "secret123", Email: "a@example.com"}); err == nil {
		t.Error("expected duplicate email to be rejected")
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	svc := newUserService(t)
	_, err := svc.GetByID(999)
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.Code != 404 {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestUserGetByID_UsesCache(t *testing.T) {
	ttl := store.NewMemoryStore()
	defer ttl.Close()
	svc := NewUserService(newTestDB(t), ttl)

	created, err := svc.Create(&UserCreateRequest{Username: "alice", Password: "secret123"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// First read populates the cache, second read is served from it even
	// after the row is removed underneath.
	if _, err := svc.GetByID(created.ID); err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	svc.db.Unscoped().Delete(&models.User{}, created.ID)

	user, err := svc.GetByID(created.ID)
	if err != nil {
		t.Fatalf("cached GetByID failed: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("Username = %q, expected cached alice", user.Username)
	}
}

func TestUserPage_Filters(t *testing.T) {
	svc := newUserService(t)
	svc.Create(&UserCreateRequest{Username: "alice", Password: "secret123"})
	svc.Create(&UserCreateRequest{Username: "alicia", Password: "secret123"})
	svc.Create(&UserCreateRequest{Username: "bob", Password: "secret123"})

	result, err := svc.Page(&UserQuery{Username: "ali"})
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("Total = %d, expected 2 for username filter", result.Total)
	}

	disabled := models.UserDisabled
	result, err = svc.Page(&UserQuery{Status: &disabled})
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	if result.Total != 0 {
		t.Errorf("Total = %d, expected 0 disabled users", result.Total)
	}
}

func TestUserUpdateStatus(t *testing.T) {
	svc := newUserService(t)
	user, _ := svc.Create(&UserCreateRequest{Username: "alice", Password: "secret123"})

	if err := svc.UpdateStatus(user.ID, models.UserDisabled); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	got, err := svc.GetByUsername("alice")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if got.IsEnabled() {
		t.Error("expected user to be disabled")
	}

	if err := svc.UpdateStatus(user.ID, 7); err == nil {
		t.Error("expected invalid status value to be rejected")
	}
	if err := svc.UpdateStatus(999, models.UserEnabled); err == nil {
		t.Error("expected missing user to be reported")
	}
}

func TestUserDelete_SoftDeletes(t *testing.T) {
	svc := newUserService(t)
	user, _ := svc.Create(&UserCreateRequest{Username: "alice", Password: "secret123"})

	if err := svc.Delete(user.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.GetByUsername("alice"); err == nil {
		t.Error("deleted user must not be found")
	}

	var count int64
	svc.db.Unscoped().Model(&models.User{}).Where("id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Error("expected the row to survive as soft-deleted")
	}
}

func TestUserStatistics(t *testing.T) {
	svc := newUserService(t)
	svc.Create(&UserCreateRequest{Username: "alice", Password: "secret123"})
	bob, _ := svc.Create(&UserCreateRequest{Username: "bob", Password: "secret123"})
	svc.UpdateStatus(bob.ID, models.UserDisabled)

	stats, err := svc.Statistics()
	if err != nil {
		t.Fatalf("Statistics failed: %v", err)
	}
	if stats.Total != 2 || stats.Enabled != 1 || stats.Disabled != 1 {
		t.Errorf("stats = %+v, expected 2/1/1", stats)
	}
}

func TestUserExistsChecks(t *testing.T) {
	svc := newUserService(t)
	svc.Create(&UserCreateRequest{Username: "alice", Password: "secret123", Email: "a@example.com", Phone: "13800000000"})

	cases := []struct {
		name   string
		check  func() (bool, error)
		expect bool
	}{
		{"username taken", func() (bool, error) { return svc.UsernameExists("alice") }, true},
		{"username free", func() (bool, error) { return svc.UsernameExists("bob") }, false},
		{"email taken", func() (bool, error) { return svc.EmailExists("a@example.com") }, true},
		{"phone taken", func() (bool, error) { return svc.PhoneExists("13800000000") }, true},
		{"phone free", func() (bool, error) { return svc.PhoneExists("13900000000") }, false},
	}
	for _, tc := range cases {
		got, err := tc.check()
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.expect {
			t.Errorf("%s = %v, expected %v", tc.name, got, tc.expect)
		}
	}
}
