package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/follownet/backend/internal/common/clock"
	"github.com/follownet/backend/internal/common/crypto"
	"github.com/follownet/backend/internal/common/db"
	commonerrors "github.com/follownet/backend/internal/common/errors"
	"github.com/follownet/backend/internal/common/logger"
	"github.com/follownet/backend/internal/common/result"
	"github.com/follownet/backend/internal/observability/metrics"
	userdomain "github.com/follownet/backend/internal/user/domain"
	userrepo "github.com/follownet/backend/internal/user/repository"
)

// Service owns credential hashing and token issuance/verification.
type Service struct {
	users     userrepo.Repository
	hasher    crypto.PasswordHasher
	jwtSecret []byte
	tokenTTL  time.Duration
	clock     clock.Clock
	log       *logger.Logger
}

func New(
	users userrepo.Repository,
	hasher crypto.PasswordHasher,
	jwtSecret string,
	tokenTTL time.Duration,
	clk clock.Clock,
	log *logger.Logger,
) *Service {
	return &Service{
		users:     users,
		hasher:    hasher,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		clock:     clk,
		log:       log,
	}
}

// Claims is the verified content of a bearer token.
type Claims struct {
	Username string
}

func (s *Service) CreateUser(ctx context.Context, username, password string) result.Result[userdomain.Summary] {
	s.log.WithFields(ctx, logger.Fields{
		"username": username,
		"action":   "create_user_attempt",
	}).Info("create user attempt")

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "create_user_hash_failed",
		}).Errorf("create user failed: password hash error: %v", err)
		return result.Err[userdomain.Summary](commonerrors.ErrInternal.WithCause(err))
	}

	user := userdomain.User{
		Username:     username,
		PasswordHash: hash,
		Created:      s.clock.Now().UTC(),
		Following:    []string{},
		Posts:        []string{},
	}

	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, db.ErrDuplicateKey):
			s.log.WithFields(ctx, logger.Fields{
				"username": username,
				"action":   "create_user_duplicate",
			}).Warn("create user failed: already exists")
			return result.Err[userdomain.Summary](commonerrors.ErrUserAlreadyExists)
		case errors.Is(err, db.ErrSchemaViolation):
			s.log.WithFields(ctx, logger.Fields{
				"username": username,
				"action":   "create_user_schema_rejected",
			}).Warnf("create user failed: schema rejected document: %v", err)
			return result.Err[userdomain.Summary](commonerrors.NewValidationError(
				"Username must be 3-25 word characters",
			))
		default:
			s.log.WithFields(ctx, logger.Fields{
				"username": username,
				"action":   "create_user_failed",
			}).Errorf("create user failed: %v", err)
			return result.Err[userdomain.Summary](commonerrors.ErrInternal.WithCause(err))
		}
	}

	metrics.UsersCreated.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"username": username,
		"action":   "create_user_success",
	}).Info("create user success")

	return result.Ok(userdomain.Summary{
		Username: user.Username,
		Created:  user.Created,
	})
}

func (s *Service) Login(ctx context.Context, username, password string) result.Result[string] {
	s.log.WithFields(ctx, logger.Fields{
		"username": username,
		"action":   "login_attempt",
	}).Info("login attempt")

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, db.ErrNoDocument) {
			s.log.WithFields(ctx, logger.Fields{
				"username": username,
				"action":   "login_user_not_found",
			}).Warn("login failed: not found")
			return result.Err[string](commonerrors.ErrIncorrectCredentials)
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		return result.Err[string](commonerrors.ErrInternal.WithCause(err))
	}

	// Defensive: the schema requires a hash, so this should not occur.
	if user.PasswordHash == "" {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "login_missing_hash",
		}).Error("login failed: stored user has no password hash")
		return result.Err[string](commonerrors.ErrInternal)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "login_invalid_password",
		}).Warn("login failed: invalid password")
		return result.Err[string](commonerrors.ErrIncorrectCredentials)
	}

	token, err := s.IssueToken(username)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "login_token_issue_failed",
		}).Errorf("login failed: token issue error: %v", err)
		return result.Err[string](commonerrors.ErrInternal.WithCause(err))
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": username,
		"action":   "login_success",
	}).Info("login success")

	return result.Ok(token)
}

func (s *Service) IssueToken(username string) (string, error) {
	now := s.clock.Now()
	claims := jwt.MapClaims{
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := t.SignedString(s.jwtSecret)
	if err != nil {
		return "", err
	}

	metrics.TokensIssued.Inc()
	return tokenString, nil
}

// VerifyToken returns the claims of a valid, unexpired token. Every failure
// mode, expired, bad signature, malformed, is logged and reported as an
// anonymous context; a bad token never rejects the request outright.
func (s *Service) VerifyToken(tokenString string) (Claims, bool) {
	metrics.TokenVerificationsTotal.Inc()

	parsed, err := jwt.Parse(
		tokenString,
		func(token *jwt.Token) (any, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return s.jwtSecret, nil
		},
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !parsed.Valid {
		if err == nil {
			err = errors.New("token is not valid")
		}
		s.log.Warnf("token verification failed, treating request as anonymous: %v", err)
		metrics.TokenVerificationsFailed.Inc()
		return Claims{}, false
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		s.log.Warn("token verification failed, treating request as anonymous: invalid claims type")
		metrics.TokenVerificationsFailed.Inc()
		return Claims{}, false
	}

	username, _ := mapClaims["username"].(string)
	if username == "" {
		s.log.Warn("token verification failed, treating request as anonymous: missing username claim")
		metrics.TokenVerificationsFailed.Inc()
		return Claims{}, false
	}

	return Claims{Username: username}, true
}
