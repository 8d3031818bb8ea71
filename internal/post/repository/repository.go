package repository

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/follownet/backend/internal/common/db"
	"github.com/follownet/backend/internal/post/domain"
)

// Repository is the post half of the storage contract.
type Repository interface {
	Create(ctx context.Context, post domain.Post) (domain.Post, error)
	FindByID(ctx context.Context, id string) (domain.Post, error)
	FindByAuthor(ctx context.Context, author string) ([]domain.Post, error)
	ListAll(ctx context.Context) ([]domain.Post, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const postColumns = `id, author, title, content, created`

// Create inserts the post and appends its id to the author's posts list in
// one transaction, so a failure of either write leaves no orphaned post.
// The persisted document is re-read and returned.
func (r *PgRepository) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Post{}, db.ClassifyError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(
		ctx,
		`INSERT INTO posts (id, author, title, content, created)
		 VALUES ($1, $2, $3, $4, $5)`,
		post.ID,
		post.Author,
		post.Title,
		post.Content,
		post.Created,
	)
	if err != nil {
		return domain.Post{}, db.ClassifyError(err)
	}

	tag, err := tx.Exec(
		ctx,
		`UPDATE users SET posts = array_append(posts, $2) WHERE username = $1`,
		post.Author,
		post.ID,
	)
	if err != nil {
		return domain.Post{}, db.ClassifyError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Post{}, db.ErrNoDocument
	}

	row := tx.QueryRow(
		ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`,
		post.ID,
	)

	var created domain.Post
	if err := row.Scan(&created.ID, &created.Author, &created.Title, &created.Content, &created.Created); err != nil {
		return domain.Post{}, db.ClassifyError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Post{}, db.ClassifyError(err)
	}

	return created, nil
}

func (r *PgRepository) FindByID(ctx context.Context, id string) (domain.Post, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`,
		id,
	)

	var post domain.Post
	if err := row.Scan(&post.ID, &post.Author, &post.Title, &post.Content, &post.Created); err != nil {
		return domain.Post{}, db.ClassifyError(err)
	}

	return post, nil
}

// FindByAuthor returns the author's posts in creation order. An author with
// no posts yields an empty list, not an error.
func (r *PgRepository) FindByAuthor(ctx context.Context, author string) ([]domain.Post, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+postColumns+` FROM posts WHERE author = $1 ORDER BY created ASC, id ASC`,
		author,
	)
	if err != nil {
		return nil, db.ClassifyError(err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.Author, &p.Title, &p.Content, &p.Created); err != nil {
			return nil, db.ClassifyError(err)
		}
		posts = append(posts, p)
	}

	if rows.Err() != nil {
		return nil, db.ClassifyError(rows.Err())
	}

	if posts == nil {
		posts = []domain.Post{}
	}

	return posts, nil
}

func (r *PgRepository) ListAll(ctx context.Context) ([]domain.Post, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+postColumns+` FROM posts ORDER BY created ASC, id ASC`,
	)
	if err != nil {
		return nil, db.ClassifyError(err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.Author, &p.Title, &p.Content, &p.Created); err != nil {
			return nil, db.ClassifyError(err)
		}
		posts = append(posts, p)
	}

	if rows.Err() != nil {
		return nil, db.ClassifyError(rows.Err())
	}

	if posts == nil {
		posts = []domain.Post{}
	}

	return posts, nil
}
