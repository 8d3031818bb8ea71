package service

import (
	"context"
	"errors"

	"github.com/follownet/backend/internal/common/constants"
	"github.com/follownet/backend/internal/common/db"
	commonerrors "github.com/follownet/backend/internal/common/errors"
	"github.com/follownet/backend/internal/common/logger"
	"github.com/follownet/backend/internal/common/result"
	postrepo "github.com/follownet/backend/internal/post/repository"
	"github.com/follownet/backend/internal/user/domain"
	userrepo "github.com/follownet/backend/internal/user/repository"
)

// ResolutionService resolves users together with their authored posts and a
// depth-bounded expansion of their follow graph.
type ResolutionService struct {
	users userrepo.Repository
	posts postrepo.Repository
	log   *logger.Logger
}

func NewResolutionService(
	users userrepo.Repository,
	posts postrepo.Repository,
	log *logger.Logger,
) *ResolutionService {
	return &ResolutionService{users: users, posts: posts, log: log}
}

// GetUser resolves username to a hash-stripped view. Each entry in the
// following list is fully resolved with depth-1 while depth > 0, and kept as
// a shallow stub at depth 0. Depth is clamped to [0, MaxFollowDepth]; the
// bound is the public contract that keeps cyclic follow chains from costing
// unbounded work. Every resolved user re-queries storage independently.
func (s *ResolutionService) GetUser(ctx context.Context, username string, depth int) result.Result[domain.View] {
	if depth < 0 {
		depth = 0
	}
	if depth > constants.MaxFollowDepth {
		depth = constants.MaxFollowDepth
	}

	view, err := s.resolve(ctx, username, depth)
	if err != nil {
		if errors.Is(err, db.ErrNoDocument) {
			s.log.WithFields(ctx, logger.Fields{
				"username": username,
				"action":   "get_user_not_found",
			}).Warn("get user failed: not found")
			return result.Err[domain.View](commonerrors.ErrNoSuchUser)
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "get_user_failed",
		}).Errorf("get user failed: %v", err)
		return result.Err[domain.View](commonerrors.ErrInternal.WithCause(err))
	}

	return result.Ok(view)
}

// ListUsers returns hash-stripped summaries of every user.
func (s *ResolutionService) ListUsers(ctx context.Context) result.Result[[]domain.Summary] {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "list_users_failed",
		}).Errorf("list users failed: %v", err)
		return result.Err[[]domain.Summary](commonerrors.ErrInternal.WithCause(err))
	}

	summaries := make([]domain.Summary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, domain.Summary{
			Username: u.Username,
			Created:  u.Created,
		})
	}

	return result.Ok(summaries)
}

func (s *ResolutionService) resolve(ctx context.Context, username string, depth int) (domain.View, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return domain.View{}, err
	}

	view := domain.View{
		Username:  user.Username,
		Created:   user.Created,
		Following: []domain.View{},
		Posts:     nil,
	}

	if depth > 0 {
		for _, followed := range user.Following {
			sub, err := s.resolve(ctx, followed, depth-1)
			if err != nil {
				if errors.Is(err, db.ErrNoDocument) {
					// Stale edge: the followed user was removed after the
					// follow was recorded. Skip it rather than fail the view.
					continue
				}
				return domain.View{}, err
			}
			view.Following = append(view.Following, sub)
		}
	} else {
		stubs, err := s.users.FindManyByUsernames(ctx, user.Following)
		if err != nil {
			return domain.View{}, err
		}
		for _, stub := range stubs {
			view.Following = append(view.Following, domain.Stub(stub))
		}
	}

	posts, err := s.posts.FindByAuthor(ctx, user.Username)
	if err != nil {
		return domain.View{}, err
	}
	view.Posts = posts

	return view, nil
}
