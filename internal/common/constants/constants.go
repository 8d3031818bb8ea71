package constants

import "time"

const (
	UsernameMinLength = 3
	UsernameMaxLength = 25
	PasswordMaxLength = 72
	TitleMinLength    = 1
	TitleMaxLength    = 50
	ContentMinLength  = 1
	ContentMaxLength  = 500

	JWTSecretMinLength = 32
	BcryptCost         = 10

	// MaxFollowDepth caps recursive follow-graph expansion. A cycle in the
	// graph costs at most this many extra hops, never unbounded work.
	MaxFollowDepth     = 3
	DefaultFollowDepth = 1

	DBPoolMaxOpenConns    = 25
	DBPoolMinOpenConns    = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = time.Second
	DBPoolMetricsInterval = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultHTTPPort       = "8080"
	DefaultRequestTimeout = 5 * time.Second
	DefaultTokenTTL       = time.Hour

	DefaultMaxRequestSize = 1 << 20

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
