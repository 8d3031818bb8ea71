package repository

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/follownet/backend/internal/common/db"
	"github.com/follownet/backend/internal/user/domain"
)

// Repository is the user half of the storage contract: insert-one with
// unique-key and schema enforcement, keyed lookups, and atomic conditional
// updates on the following set.
type Repository interface {
	Create(ctx context.Context, user domain.User) error
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	FindManyByUsernames(ctx context.Context, usernames []string) ([]domain.User, error)
	ListAll(ctx context.Context) ([]domain.User, error)
	AddFollowing(ctx context.Context, current, target string) ([]string, error)
	RemoveFollowing(ctx context.Context, current, target string) ([]string, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const userColumns = `username, password_hash, created, following, posts`

func (r *PgRepository) Create(ctx context.Context, user domain.User) error {
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO users (username, password_hash, created, following, posts)
		 VALUES ($1, $2, $3, '{}', '{}')`,
		user.Username,
		user.PasswordHash,
		user.Created,
	)
	return db.ClassifyError(err)
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`,
		username,
	)

	var user domain.User
	err := row.Scan(&user.Username, &user.PasswordHash, &user.Created, &user.Following, &user.Posts)
	if err != nil {
		return domain.User{}, db.ClassifyError(err)
	}

	return user, nil
}

func (r *PgRepository) FindManyByUsernames(ctx context.Context, usernames []string) ([]domain.User, error) {
	if len(usernames) == 0 {
		return []domain.User{}, nil
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ANY($1)`,
		usernames,
	)
	if err != nil {
		return nil, db.ClassifyError(err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

func (r *PgRepository) ListAll(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created ASC, username ASC`,
	)
	if err != nil {
		return nil, db.ClassifyError(err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// AddFollowing adds target to current's following set in a single conditional
// update. The CASE keeps the statement idempotent while still matching the
// row, so an absent result means current does not exist, never "already
// following". Row-level atomicity makes concurrent follows safe without a
// read-modify-write cycle.
func (r *PgRepository) AddFollowing(ctx context.Context, current, target string) ([]string, error) {
	row := r.pool.QueryRow(
		ctx,
		`UPDATE users
		    SET following = CASE
		        WHEN $2 = ANY(following) THEN following
		        ELSE array_append(following, $2)
		    END
		  WHERE username = $1
		  RETURNING following`,
		current,
		target,
	)

	var following []string
	if err := row.Scan(&following); err != nil {
		return nil, db.ClassifyError(err)
	}

	return following, nil
}

// RemoveFollowing is the atomic inverse of AddFollowing; removing an absent
// edge leaves the set unchanged and still reports the row.
func (r *PgRepository) RemoveFollowing(ctx context.Context, current, target string) ([]string, error) {
	row := r.pool.QueryRow(
		ctx,
		`UPDATE users
		    SET following = array_remove(following, $2)
		  WHERE username = $1
		  RETURNING following`,
		current,
		target,
	)

	var following []string
	if err := row.Scan(&following); err != nil {
		return nil, db.ClassifyError(err)
	}

	return following, nil
}

type pgRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanUsers(rows pgRows) ([]domain.User, error) {
	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.Username, &u.PasswordHash, &u.Created, &u.Following, &u.Posts); err != nil {
			return nil, db.ClassifyError(err)
		}
		users = append(users, u)
	}

	if rows.Err() != nil {
		return nil, db.ClassifyError(rows.Err())
	}

	if users == nil {
		users = []domain.User{}
	}

	return users, nil
}
