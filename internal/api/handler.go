package api

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	authservice "github.com/follownet/backend/internal/auth/service"
	"github.com/follownet/backend/internal/common/constants"
	commonerrors "github.com/follownet/backend/internal/common/errors"
	commonhttp "github.com/follownet/backend/internal/common/http"
	"github.com/follownet/backend/internal/common/logger"
	graphservice "github.com/follownet/backend/internal/graph/service"
	postservice "github.com/follownet/backend/internal/post/service"
	userservice "github.com/follownet/backend/internal/user/service"
)

var (
	usernamePattern = regexp.MustCompile(`^\w+$`)
	titlePattern    = regexp.MustCompile(`^[\w ]+$`)
)

type Handler struct {
	auth           *authservice.Service
	graph          *graphservice.Service
	users          *userservice.ResolutionService
	posts          *postservice.Service
	validate       *validator.Validate
	requestTimeout time.Duration
	log            *logger.Logger
}

func NewHandler(
	auth *authservice.Service,
	graph *graphservice.Service,
	users *userservice.ResolutionService,
	posts *postservice.Service,
	requestTimeout time.Duration,
	log *logger.Logger,
) (*Handler, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.RegisterValidation("wordchars", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}); err != nil {
		return nil, err
	}

	if err := v.RegisterValidation("titlechars", func(fl validator.FieldLevel) bool {
		return titlePattern.MatchString(fl.Field().String())
	}); err != nil {
		return nil, err
	}

	return &Handler{
		auth:           auth,
		graph:          graph,
		users:          users,
		posts:          posts,
		validate:       v,
		requestTimeout: requestTimeout,
		log:            log,
	}, nil
}

// Routes registers every endpoint on a fresh mux. Reads are open; writes that
// mutate a specific user's document require an authenticated context.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/users", h.createUser)
	mux.HandleFunc("GET /api/users", h.listUsers)
	mux.HandleFunc("GET /api/users/{username}", h.getUser)
	mux.HandleFunc("GET /api/users/{username}/posts", h.getUserPosts)
	mux.HandleFunc("POST /api/login", h.login)
	mux.HandleFunc("GET /api/me", h.me)
	mux.HandleFunc("POST /api/follow", h.follow)
	mux.HandleFunc("POST /api/unfollow", h.unfollow)
	mux.HandleFunc("POST /api/posts", h.createPost)
	mux.HandleFunc("GET /api/posts", h.listPosts)
	mux.HandleFunc("GET /api/posts/{id}", h.getPost)

	return mux
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required,min=3,max=25,wordchars"`
	Password string `json:"password" validate:"required,max=72"`
}

type targetUserRequest struct {
	Username string `json:"username" validate:"required"`
}

type createPostRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=50,titlechars"`
	Content string `json:"content" validate:"required,min=1,max=500"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req credentialsRequest
	if !h.decodeAndValidate(w, r, &req, "Username must be 3-25 word characters") {
		return
	}

	res := h.auth.CreateUser(ctx, req.Username, req.Password)
	writeResult(w, h.log, res, "CreateUserSuccess", "user")
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req credentialsRequest
	if !h.decodeAndValidate(w, r, &req, "Incorrect username or password") {
		return
	}

	res := h.auth.Login(ctx, req.Username, req.Password)
	writeResult(w, h.log, res, "LoginSuccess", "token")
}

// me reports the caller's own resolved view; the username comes from the
// verified token, never from the request.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	authCtx := AuthFromContext(ctx)
	if !authCtx.Authenticated {
		writeFailure(w, h.log, commonerrors.ErrAuthenticationRequired)
		return
	}

	res := h.users.GetUser(ctx, authCtx.Username, constants.DefaultFollowDepth)
	writeResult(w, h.log, res, "GetUserSuccess", "user")
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	depth := constants.DefaultFollowDepth
	if raw := r.URL.Query().Get("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeFailure(w, h.log, commonerrors.NewValidationError("Depth must be an integer"))
			return
		}
		depth = parsed
	}

	res := h.users.GetUser(ctx, r.PathValue("username"), depth)
	writeResult(w, h.log, res, "GetUserSuccess", "user")
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	res := h.users.ListUsers(ctx)
	writeResult(w, h.log, res, "UserListSuccess", "users")
}

func (h *Handler) getUserPosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	res := h.posts.GetPostsByUser(ctx, r.PathValue("username"))
	writeResult(w, h.log, res, "PostListSuccess", "posts")
}

func (h *Handler) follow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	authCtx := AuthFromContext(ctx)
	if !authCtx.Authenticated {
		writeFailure(w, h.log, commonerrors.ErrAuthenticationRequired)
		return
	}

	var req targetUserRequest
	if !h.decodeAndValidate(w, r, &req, "Username is required") {
		return
	}

	res := h.graph.Follow(ctx, authCtx.Username, req.Username)
	writeResult(w, h.log, res, "FollowSuccess", "message")
}

func (h *Handler) unfollow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	authCtx := AuthFromContext(ctx)
	if !authCtx.Authenticated {
		writeFailure(w, h.log, commonerrors.ErrAuthenticationRequired)
		return
	}

	var req targetUserRequest
	if !h.decodeAndValidate(w, r, &req, "Username is required") {
		return
	}

	res := h.graph.Unfollow(ctx, authCtx.Username, req.Username)
	writeResult(w, h.log, res, "UnfollowSuccess", "message")
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	authCtx := AuthFromContext(ctx)
	if !authCtx.Authenticated {
		writeFailure(w, h.log, commonerrors.ErrAuthenticationRequired)
		return
	}

	var req createPostRequest
	if !h.decodeAndValidate(w, r, &req,
		"Title must be 1-50 word characters or spaces and content 1-500 characters") {
		return
	}

	res := h.posts.CreatePost(ctx, authCtx.Username, req.Title, req.Content)
	writeResult(w, h.log, res, "CreatePostSuccess", "post")
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	res := h.posts.GetPost(ctx, r.PathValue("id"))
	writeResult(w, h.log, res, "GetPostSuccess", "post")
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	res := h.posts.ListPosts(ctx)
	writeResult(w, h.log, res, "PostListSuccess", "posts")
}

func (h *Handler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.requestTimeout)
}

// decodeAndValidate rejects the request before any service call, so failed
// validation never reaches storage. Reports whether the request is usable.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any, message string) bool {
	if err := commonhttp.DecodeJSON(r, req); err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"path":   r.URL.Path,
			"action": "request_decode_failed",
		}).Warnf("request rejected: %v", err)
		writeFailure(w, h.log, commonerrors.NewValidationError("Request body must be valid JSON"))
		return false
	}

	if err := h.validate.Struct(req); err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"path":   r.URL.Path,
			"action": "request_validation_failed",
		}).Warnf("request rejected: %v", err)
		writeFailure(w, h.log, commonerrors.NewValidationError(message))
		return false
	}

	return true
}
