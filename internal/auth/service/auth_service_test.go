package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/follownet/backend/internal/common/clock"
	"github.com/follownet/backend/internal/common/crypto"
	"github.com/follownet/backend/internal/common/db"
	commonerrors "github.com/follownet/backend/internal/common/errors"
	"github.com/follownet/backend/internal/common/logger"
	userdomain "github.com/follownet/backend/internal/user/domain"
)

const testSecret = "test-secret-that-is-at-least-32-bytes!!"

type mockUserRepo struct {
	createFunc          func(ctx context.Context, user userdomain.User) error
	findByUsernameFunc  func(ctx context.Context, username string) (userdomain.User, error)
	findManyFunc        func(ctx context.Context, usernames []string) ([]userdomain.User, error)
	listAllFunc         func(ctx context.Context) ([]userdomain.User, error)
	addFollowingFunc    func(ctx context.Context, current, target string) ([]string, error)
	removeFollowingFunc func(ctx context.Context, current, target string) ([]string, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user userdomain.User) error {
	return m.createFunc(ctx, user)
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (userdomain.User, error) {
	return m.findByUsernameFunc(ctx, username)
}

func (m *mockUserRepo) FindManyByUsernames(ctx context.Context, usernames []string) ([]userdomain.User, error) {
	return m.findManyFunc(ctx, usernames)
}

func (m *mockUserRepo) ListAll(ctx context.Context) ([]userdomain.User, error) {
	return m.listAllFunc(ctx)
}

func (m *mockUserRepo) AddFollowing(ctx context.Context, current, target string) ([]string, error) {
	return m.addFollowingFunc(ctx, current, target)
}

func (m *mockUserRepo) RemoveFollowing(ctx context.Context, current, target string) ([]string, error) {
	return m.removeFollowingFunc(ctx, current, target)
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("", "test", "CRITICAL")
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return log
}

func newTestService(t *testing.T, repo *mockUserRepo, clk clock.Clock) *Service {
	t.Helper()
	return New(repo, &crypto.BcryptHasher{}, testSecret, time.Hour, clk, newTestLogger(t))
}

func TestCreateUser(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success returns hash-stripped summary", func(t *testing.T) {
		var stored userdomain.User
		repo := &mockUserRepo{
			createFunc: func(ctx context.Context, user userdomain.User) error {
				stored = user
				return nil
			},
		}
		svc := newTestService(t, repo, clock.NewMockClock(now))

		res := svc.CreateUser(context.Background(), "alice", "hunter22")
		if !res.IsOk() {
			t.Fatalf("expected success, got %v", res.Err())
		}

		summary := res.Value()
		if summary.Username != "alice" {
			t.Errorf("username = %q, want alice", summary.Username)
		}
		if !summary.Created.Equal(now) {
			t.Errorf("created = %v, want %v", summary.Created, now)
		}

		if stored.PasswordHash == "" || stored.PasswordHash == "hunter22" {
			t.Errorf("password was not hashed before storage: %q", stored.PasswordHash)
		}
		if len(stored.Following) != 0 || len(stored.Posts) != 0 {
			t.Errorf("new user must start with empty following and posts")
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		repo := &mockUserRepo{
			createFunc: func(ctx context.Context, user userdomain.User) error {
				return db.ErrDuplicateKey
			},
		}
		svc := newTestService(t, repo, clock.NewMockClock(now))

		res := svc.CreateUser(context.Background(), "alice", "hunter22")
		if res.IsOk() {
			t.Fatal("expected failure")
		}
		if !errors.Is(res.Err(), commonerrors.ErrUserAlreadyExists) {
			t.Errorf("err = %v, want ErrUserAlreadyExists", res.Err())
		}
	})

	t.Run("schema rejection becomes validation error", func(t *testing.T) {
		repo := &mockUserRepo{
			createFunc: func(ctx context.Context, user userdomain.User) error {
				return db.ErrSchemaViolation
			},
		}
		svc := newTestService(t, repo, clock.NewMockClock(now))

		res := svc.CreateUser(context.Background(), "a!", "hunter22")
		if res.IsOk() {
			t.Fatal("expected failure")
		}
		de, ok := commonerrors.AsDomainError(res.Err())
		if !ok || de.Category() != commonerrors.CategoryValidation {
			t.Errorf("err = %v, want validation category", res.Err())
		}
	})
}

func TestLogin(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	hasher := &crypto.BcryptHasher{}
	hash, err := hasher.Hash("hunter22")
	if err != nil {
		t.Fatalf("failed to hash fixture password: %v", err)
	}

	storedUser := userdomain.User{
		Username:     "alice",
		PasswordHash: hash,
		Created:      now,
	}

	t.Run("success issues verifiable token", func(t *testing.T) {
		repo := &mockUserRepo{
			findByUsernameFunc: func(ctx context.Context, username string) (userdomain.User, error) {
				return storedUser, nil
			},
		}
		svc := newTestService(t, repo, clock.NewMockClock(now))

		res := svc.Login(context.Background(), "alice", "hunter22")
		if !res.IsOk() {
			t.Fatalf("expected success, got %v", res.Err())
		}

		claims, ok := svc.VerifyToken(res.Value())
		if !ok {
			t.Fatal("issued token failed verification")
		}
		if claims.Username != "alice" {
			t.Errorf("claims.Username = %q, want alice", claims.Username)
		}
	})

	t.Run("unknown user and wrong password share one message", func(t *testing.T) {
		tests := []struct {
			name     string
			find     func(ctx context.Context, username string) (userdomain.User, error)
			password string
		}{
			{
				name: "unknown user",
				find: func(ctx context.Context, username string) (userdomain.User, error) {
					return userdomain.User{}, db.ErrNoDocument
				},
				password: "hunter22",
			},
			{
				name: "wrong password",
				find: func(ctx context.Context, username string) (userdomain.User, error) {
					return storedUser, nil
				},
				password: "wrong",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := &mockUserRepo{findByUsernameFunc: tt.find}
				svc := newTestService(t, repo, clock.NewMockClock(now))

				res := svc.Login(context.Background(), "alice", tt.password)
				if res.IsOk() {
					t.Fatal("expected failure")
				}
				if !errors.Is(res.Err(), commonerrors.ErrIncorrectCredentials) {
					t.Errorf("err = %v, want ErrIncorrectCredentials", res.Err())
				}
			})
		}
	})

	t.Run("stored user without hash is an internal error", func(t *testing.T) {
		repo := &mockUserRepo{
			findByUsernameFunc: func(ctx context.Context, username string) (userdomain.User, error) {
				return userdomain.User{Username: "alice"}, nil
			},
		}
		svc := newTestService(t, repo, clock.NewMockClock(now))

		res := svc.Login(context.Background(), "alice", "hunter22")
		if res.IsOk() {
			t.Fatal("expected failure")
		}
		de, ok := commonerrors.AsDomainError(res.Err())
		if !ok || de.Category() != commonerrors.CategoryInternal {
			t.Errorf("err = %v, want internal category", res.Err())
		}
	})
}

func TestVerifyToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("expired token is anonymous", func(t *testing.T) {
		clk := clock.NewMockClock(now)
		svc := newTestService(t, &mockUserRepo{}, clk)

		token, err := svc.IssueToken("alice")
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		clk.Advance(2 * time.Hour)

		if _, ok := svc.VerifyToken(token); ok {
			t.Error("expired token must not verify")
		}
	})

	t.Run("still valid just before expiry", func(t *testing.T) {
		clk := clock.NewMockClock(now)
		svc := newTestService(t, &mockUserRepo{}, clk)

		token, err := svc.IssueToken("alice")
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		clk.Advance(59 * time.Minute)

		claims, ok := svc.VerifyToken(token)
		if !ok {
			t.Fatal("token inside TTL must verify")
		}
		if claims.Username != "alice" {
			t.Errorf("claims.Username = %q, want alice", claims.Username)
		}
	})

	t.Run("malformed token is anonymous", func(t *testing.T) {
		svc := newTestService(t, &mockUserRepo{}, clock.NewMockClock(now))

		for _, token := range []string{"", "garbage", "a.b.c"} {
			if _, ok := svc.VerifyToken(token); ok {
				t.Errorf("token %q must not verify", token)
			}
		}
	})

	t.Run("token signed with another secret is anonymous", func(t *testing.T) {
		clk := clock.NewMockClock(now)
		other := New(&mockUserRepo{}, &crypto.BcryptHasher{},
			"another-secret-that-is-32-bytes-long!!!", time.Hour, clk, newTestLogger(t))

		token, err := other.IssueToken("alice")
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		svc := newTestService(t, &mockUserRepo{}, clk)
		if _, ok := svc.VerifyToken(token); ok {
			t.Error("token with foreign signature must not verify")
		}
	})
}
