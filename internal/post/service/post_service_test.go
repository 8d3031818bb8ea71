package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/follownet/backend/internal/common/clock"
	"github.com/follownet/backend/internal/common/db"
	commonerrors "github.com/follownet/backend/internal/common/errors"
	"github.com/follownet/backend/internal/common/logger"
	"github.com/follownet/backend/internal/post/domain"
	userdomain "github.com/follownet/backend/internal/user/domain"
)

type mockPostRepo struct {
	createFunc       func(ctx context.Context, post domain.Post) (domain.Post, error)
	findByIDFunc     func(ctx context.Context, id string) (domain.Post, error)
	findByAuthorFunc func(ctx context.Context, author string) ([]domain.Post, error)
	listAllFunc      func(ctx context.Context) ([]domain.Post, error)
}

func (m *mockPostRepo) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	return m.createFunc(ctx, post)
}

func (m *mockPostRepo) FindByID(ctx context.Context, id string) (domain.Post, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockPostRepo) FindByAuthor(ctx context.Context, author string) ([]domain.Post, error) {
	return m.findByAuthorFunc(ctx, author)
}

func (m *mockPostRepo) ListAll(ctx context.Context) ([]domain.Post, error) {
	return m.listAllFunc(ctx)
}

type mockUserRepo struct {
	findByUsernameFunc func(ctx context.Context, username string) (userdomain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user userdomain.User) error {
	return errors.New("not implemented")
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (userdomain.User, error) {
	return m.findByUsernameFunc(ctx, username)
}

func (m *mockUserRepo) FindManyByUsernames(ctx context.Context, usernames []string) ([]userdomain.User, error) {
	return nil, errors.New("not implemented")
}

func (m *mockUserRepo) ListAll(ctx context.Context) ([]userdomain.User, error) {
	return nil, errors.New("not implemented")
}

func (m *mockUserRepo) AddFollowing(ctx context.Context, current, target string) ([]string, error) {
	return nil, errors.New("not implemented")
}

func (m *mockUserRepo) RemoveFollowing(ctx context.Context, current, target string) ([]string, error) {
	return nil, errors.New("not implemented")
}

type staticIDGen struct{ id string }

func (g staticIDGen) NewID() (string, error) { return g.id, nil }

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("", "test", "CRITICAL")
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return log
}

func TestCreatePost(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success stamps id, author, and creation time", func(t *testing.T) {
		var stored domain.Post
		posts := &mockPostRepo{
			createFunc: func(ctx context.Context, post domain.Post) (domain.Post, error) {
				stored = post
				return post, nil
			},
		}
		svc := New(posts, &mockUserRepo{}, staticIDGen{id: "post-1"}, clock.NewMockClock(now), newTestLogger(t))

		res := svc.CreatePost(context.Background(), "alice", "First post", "hello world")
		if !res.IsOk() {
			t.Fatalf("expected success, got %v", res.Err())
		}

		if stored.ID != "post-1" {
			t.Errorf("id = %q, want post-1", stored.ID)
		}
		if stored.Author != "alice" {
			t.Errorf("author = %q, want alice", stored.Author)
		}
		if !stored.Created.Equal(now) {
			t.Errorf("created = %v, want %v", stored.Created, now)
		}
	})

	t.Run("schema rejection becomes validation error", func(t *testing.T) {
		posts := &mockPostRepo{
			createFunc: func(ctx context.Context, post domain.Post) (domain.Post, error) {
				return domain.Post{}, db.ErrSchemaViolation
			},
		}
		svc := New(posts, &mockUserRepo{}, staticIDGen{id: "post-1"}, clock.NewMockClock(now), newTestLogger(t))

		res := svc.CreatePost(context.Background(), "alice", "bad!title", "hello")
		if res.IsOk() {
			t.Fatal("expected failure")
		}
		de, ok := commonerrors.AsDomainError(res.Err())
		if !ok || de.Category() != commonerrors.CategoryValidation {
			t.Errorf("err = %v, want validation category", res.Err())
		}
	})

	t.Run("missing author", func(t *testing.T) {
		posts := &mockPostRepo{
			createFunc: func(ctx context.Context, post domain.Post) (domain.Post, error) {
				return domain.Post{}, db.ErrNoDocument
			},
		}
		svc := New(posts, &mockUserRepo{}, staticIDGen{id: "post-1"}, clock.NewMockClock(now), newTestLogger(t))

		res := svc.CreatePost(context.Background(), "ghost", "Title", "hello")
		if res.IsOk() {
			t.Fatal("expected failure")
		}
		if !errors.Is(res.Err(), commonerrors.ErrNoSuchUser) {
			t.Errorf("err = %v, want ErrNoSuchUser", res.Err())
		}
	})
}

func TestGetPost(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fixture := domain.Post{ID: "post-1", Author: "alice", Title: "First", Content: "hello", Created: now}

	t.Run("resolves the author summary", func(t *testing.T) {
		posts := &mockPostRepo{
			findByIDFunc: func(ctx context.Context, id string) (domain.Post, error) {
				return fixture, nil
			},
		}
		users := &mockUserRepo{
			findByUsernameFunc: func(ctx context.Context, username string) (userdomain.User, error) {
				return userdomain.User{Username: "alice", PasswordHash: "secret", Created: now}, nil
			},
		}
		svc := New(posts, users, staticIDGen{}, clock.NewMockClock(now), newTestLogger(t))

		res := svc.GetPost(context.Background(), "post-1")
		if !res.IsOk() {
			t.Fatalf("expected success, got %v", res.Err())
		}

		resolved := res.Value()
		if resolved.Author == nil || resolved.Author.Username != "alice" {
			t.Fatalf("author = %+v, want alice summary", resolved.Author)
		}
	})

	t.Run("unresolvable author yields nil author, not failure", func(t *testing.T) {
		posts := &mockPostRepo{
			findByIDFunc: func(ctx context.Context, id string) (domain.Post, error) {
				return fixture, nil
			},
		}
		users := &mockUserRepo{
			findByUsernameFunc: func(ctx context.Context, username string) (userdomain.User, error) {
				return userdomain.User{}, db.ErrNoDocument
			},
		}
		svc := New(posts, users, staticIDGen{}, clock.NewMockClock(now), newTestLogger(t))

		res := svc.GetPost(context.Background(), "post-1")
		if !res.IsOk() {
			t.Fatalf("expected success, got %v", res.Err())
		}
		if res.Value().Author != nil {
			t.Errorf("author = %+v, want nil", res.Value().Author)
		}
	})

	t.Run("unknown post", func(t *testing.T) {
		posts := &mockPostRepo{
			findByIDFunc: func(ctx context.Context, id string) (domain.Post, error) {
				return domain.Post{}, db.ErrNoDocument
			},
		}
		svc := New(posts, &mockUserRepo{}, staticIDGen{}, clock.NewMockClock(now), newTestLogger(t))

		res := svc.GetPost(context.Background(), "nope")
		if res.IsOk() {
			t.Fatal("expected failure")
		}
		if !errors.Is(res.Err(), commonerrors.ErrNoSuchPost) {
			t.Errorf("err = %v, want ErrNoSuchPost", res.Err())
		}
	})
}

func TestGetPostsByUser(t *testing.T) {
	t.Run("no posts is success with an empty list", func(t *testing.T) {
		posts := &mockPostRepo{
			findByAuthorFunc: func(ctx context.Context, author string) ([]domain.Post, error) {
				return []domain.Post{}, nil
			},
		}
		svc := New(posts, &mockUserRepo{}, staticIDGen{}, clock.NewMockClock(time.Now()), newTestLogger(t))

		res := svc.GetPostsByUser(context.Background(), "alice")
		if !res.IsOk() {
			t.Fatalf("expected success, got %v", res.Err())
		}
		if res.Value() == nil || len(res.Value()) != 0 {
			t.Errorf("posts = %#v, want empty non-nil list", res.Value())
		}
	})
}
