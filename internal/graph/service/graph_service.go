package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/follownet/backend/internal/common/db"
	commonerrors "github.com/follownet/backend/internal/common/errors"
	"github.com/follownet/backend/internal/common/logger"
	"github.com/follownet/backend/internal/common/result"
	"github.com/follownet/backend/internal/observability/metrics"
	userrepo "github.com/follownet/backend/internal/user/repository"
)

// Service mutates the follow graph. Both operations are idempotent and keyed
// by the authenticated caller; the target comes from the request but the
// mutated document is always the caller's own.
type Service struct {
	users userrepo.Repository
	log   *logger.Logger
}

func New(users userrepo.Repository, log *logger.Logger) *Service {
	return &Service{users: users, log: log}
}

func (s *Service) Follow(ctx context.Context, current, target string) result.Result[string] {
	s.log.WithFields(ctx, logger.Fields{
		"current": current,
		"target":  target,
		"action":  "follow_attempt",
	}).Info("follow attempt")

	if res := s.requireTarget(ctx, current, target, "follow"); res != nil {
		return *res
	}

	if _, err := s.users.AddFollowing(ctx, current, target); err != nil {
		return s.classifyMutationError(ctx, current, target, "follow", err)
	}

	metrics.FollowsTotal.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"current": current,
		"target":  target,
		"action":  "follow_success",
	}).Info("follow success")

	return result.Ok(fmt.Sprintf("You are now following %s", target))
}

func (s *Service) Unfollow(ctx context.Context, current, target string) result.Result[string] {
	s.log.WithFields(ctx, logger.Fields{
		"current": current,
		"target":  target,
		"action":  "unfollow_attempt",
	}).Info("unfollow attempt")

	if res := s.requireTarget(ctx, current, target, "unfollow"); res != nil {
		return *res
	}

	if _, err := s.users.RemoveFollowing(ctx, current, target); err != nil {
		return s.classifyMutationError(ctx, current, target, "unfollow", err)
	}

	metrics.UnfollowsTotal.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"current": current,
		"target":  target,
		"action":  "unfollow_success",
	}).Info("unfollow success")

	return result.Ok(fmt.Sprintf("You are no longer following %s", target))
}

// requireTarget verifies the target user exists; returns a non-nil failure
// Result otherwise.
func (s *Service) requireTarget(ctx context.Context, current, target, op string) *result.Result[string] {
	_, err := s.users.FindByUsername(ctx, target)
	if err == nil {
		return nil
	}

	if errors.Is(err, db.ErrNoDocument) {
		s.log.WithFields(ctx, logger.Fields{
			"current": current,
			"target":  target,
			"action":  op + "_target_not_found",
		}).Warnf("%s failed: target does not exist", op)
		res := result.Err[string](commonerrors.ErrNoSuchUser)
		return &res
	}

	s.log.WithFields(ctx, logger.Fields{
		"current": current,
		"target":  target,
		"action":  op + "_target_lookup_failed",
	}).Errorf("%s failed: target lookup error: %v", op, err)
	res := result.Err[string](commonerrors.ErrInternal.WithCause(err))
	return &res
}

func (s *Service) classifyMutationError(ctx context.Context, current, target, op string, err error) result.Result[string] {
	if errors.Is(err, db.ErrNoDocument) {
		// The authenticated user's own document is gone; the context is stale.
		s.log.WithFields(ctx, logger.Fields{
			"current": current,
			"target":  target,
			"action":  op + "_current_not_found",
		}).Warnf("%s failed: current user does not exist", op)
		return result.Err[string](commonerrors.ErrNoSuchUser)
	}

	s.log.WithFields(ctx, logger.Fields{
		"current": current,
		"target":  target,
		"action":  op + "_failed",
	}).Errorf("%s failed: %v", op, err)
	return result.Err[string](commonerrors.ErrInternal.WithCause(err))
}
