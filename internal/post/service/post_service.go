package service

import (
	"context"
	"errors"
	"time"

	"github.com/follownet/backend/internal/common/clock"
	"github.com/follownet/backend/internal/common/crypto"
	"github.com/follownet/backend/internal/common/db"
	commonerrors "github.com/follownet/backend/internal/common/errors"
	"github.com/follownet/backend/internal/common/logger"
	"github.com/follownet/backend/internal/common/result"
	"github.com/follownet/backend/internal/observability/metrics"
	"github.com/follownet/backend/internal/post/domain"
	postrepo "github.com/follownet/backend/internal/post/repository"
	userdomain "github.com/follownet/backend/internal/user/domain"
	userrepo "github.com/follownet/backend/internal/user/repository"
)

// ResolvedPost is a post with its author expanded into a hash-stripped user
// summary. Author is nil when the referenced user no longer resolves.
type ResolvedPost struct {
	ID      string              `json:"id"`
	Title   string              `json:"title"`
	Content string              `json:"content"`
	Created time.Time           `json:"created"`
	Author  *userdomain.Summary `json:"author"`
}

type Service struct {
	posts postrepo.Repository
	users userrepo.Repository
	idGen crypto.IDGenerator
	clock clock.Clock
	log   *logger.Logger
}

func New(
	posts postrepo.Repository,
	users userrepo.Repository,
	idGen crypto.IDGenerator,
	clk clock.Clock,
	log *logger.Logger,
) *Service {
	return &Service{
		posts: posts,
		users: users,
		idGen: idGen,
		clock: clk,
		log:   log,
	}
}

// CreatePost persists the post and links it to the author. The author is the
// authenticated caller, never client-supplied input.
func (s *Service) CreatePost(ctx context.Context, author, title, content string) result.Result[domain.Post] {
	s.log.WithFields(ctx, logger.Fields{
		"author": author,
		"action": "create_post_attempt",
	}).Info("create post attempt")

	id, err := s.idGen.NewID()
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"author": author,
			"action": "create_post_id_generation_failed",
		}).Errorf("create post failed: id generation error: %v", err)
		return result.Err[domain.Post](commonerrors.ErrInternal.WithCause(err))
	}

	post := domain.Post{
		ID:      id,
		Author:  author,
		Title:   title,
		Content: content,
		Created: s.clock.Now().UTC(),
	}

	created, err := s.posts.Create(ctx, post)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrSchemaViolation):
			s.log.WithFields(ctx, logger.Fields{
				"author": author,
				"action": "create_post_schema_rejected",
			}).Warnf("create post failed: schema rejected document: %v", err)
			return result.Err[domain.Post](commonerrors.NewValidationError(
				"Title must be 1-50 word characters or spaces and content 1-500 characters",
			))
		case errors.Is(err, db.ErrNoDocument):
			s.log.WithFields(ctx, logger.Fields{
				"author": author,
				"action": "create_post_author_not_found",
			}).Warn("create post failed: author does not exist")
			return result.Err[domain.Post](commonerrors.ErrNoSuchUser)
		default:
			s.log.WithFields(ctx, logger.Fields{
				"author": author,
				"action": "create_post_failed",
			}).Errorf("create post failed: %v", err)
			return result.Err[domain.Post](commonerrors.ErrInternal.WithCause(err))
		}
	}

	metrics.PostsCreated.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"author":  author,
		"post_id": created.ID,
		"action":  "create_post_success",
	}).Info("create post success")

	return result.Ok(created)
}

// GetPost fetches a post by id and resolves its author. An author that no
// longer resolves yields a nil author field rather than a failed request.
func (s *Service) GetPost(ctx context.Context, id string) result.Result[ResolvedPost] {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNoDocument) {
			s.log.WithFields(ctx, logger.Fields{
				"post_id": id,
				"action":  "get_post_not_found",
			}).Warn("get post failed: not found")
			return result.Err[ResolvedPost](commonerrors.ErrNoSuchPost)
		}
		s.log.WithFields(ctx, logger.Fields{
			"post_id": id,
			"action":  "get_post_failed",
		}).Errorf("get post failed: %v", err)
		return result.Err[ResolvedPost](commonerrors.ErrInternal.WithCause(err))
	}

	resolved := ResolvedPost{
		ID:      post.ID,
		Title:   post.Title,
		Content: post.Content,
		Created: post.Created,
	}

	author, err := s.users.FindByUsername(ctx, post.Author)
	switch {
	case err == nil:
		resolved.Author = &userdomain.Summary{
			Username: author.Username,
			Created:  author.Created,
		}
	case errors.Is(err, db.ErrNoDocument):
		s.log.WithFields(ctx, logger.Fields{
			"post_id": id,
			"author":  post.Author,
			"action":  "get_post_author_unresolved",
		}).Warn("get post: author no longer resolves")
	default:
		s.log.WithFields(ctx, logger.Fields{
			"post_id": id,
			"author":  post.Author,
			"action":  "get_post_author_lookup_failed",
		}).Errorf("get post failed: author lookup error: %v", err)
		return result.Err[ResolvedPost](commonerrors.ErrInternal.WithCause(err))
	}

	return result.Ok(resolved)
}

// GetPostsByUser returns the author's posts in creation order; no posts is
// success with an empty list.
func (s *Service) GetPostsByUser(ctx context.Context, author string) result.Result[[]domain.Post] {
	posts, err := s.posts.FindByAuthor(ctx, author)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"author": author,
			"action": "get_posts_by_user_failed",
		}).Errorf("get posts by user failed: %v", err)
		return result.Err[[]domain.Post](commonerrors.ErrInternal.WithCause(err))
	}

	return result.Ok(posts)
}

// ListPosts returns every post in creation order.
func (s *Service) ListPosts(ctx context.Context) result.Result[[]domain.Post] {
	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "list_posts_failed",
		}).Errorf("list posts failed: %v", err)
		return result.Err[[]domain.Post](commonerrors.ErrInternal.WithCause(err))
	}

	return result.Ok(posts)
}
