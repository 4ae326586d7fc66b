package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/onomatheater/blog-api/internal/common"
	"github.com/onomatheater/blog-api/internal/dbx"
	"github.com/onomatheater/blog-api/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `INSERT INTO posts (title, content, user_id, is_published)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, post.Title, post.Content, post.UserID, post.IsPublished).
		Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	return post, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.PostListItem, error) {
	query := `SELECT p.id, p.title, p.content, p.user_id, p.is_published,
			p.created_at, p.updated_at, u.username
		FROM posts p JOIN users u ON u.id = p.user_id
		WHERE p.id = $1`

	var item models.PostListItem
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.Title, &item.Content, &item.UserID, &item.IsPublished,
		&item.CreatedAt, &item.UpdatedAt, &item.Author)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("fetching post: %w", err)
	}

	return &item, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]models.PostListItem, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT p.id, p.title, p.content, p.user_id, p.is_published,
			p.created_at, p.updated_at, u.username
		FROM posts p JOIN users u ON u.id = p.user_id`)

	var conds []string
	var args []any

	switch filter.Scope {
	case ScopePublished:
		conds = append(conds, "p.is_published = TRUE")
	case ScopePublishedOrOwn:
		args = append(args, filter.ViewerID)
		conds = append(conds, fmt.Sprintf("(p.is_published = TRUE OR p.user_id = $%d)", len(args)))
	case ScopeOwnUnpublished:
		args = append(args, filter.ViewerID)
		conds = append(conds, fmt.Sprintf("(p.is_published = FALSE AND p.user_id = $%d)", len(args)))
	}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("(p.title ILIKE $%d OR p.content ILIKE $%d)", len(args), len(args)))
	}

	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	order := "DESC"
	if filter.SortAsc {
		order = "ASC"
	}
	args = append(args, filter.Limit)
	limitIdx := len(args)
	args = append(args, filter.Skip)
	sb.WriteString(fmt.Sprintf(" ORDER BY p.created_at %s, p.id %s LIMIT $%d OFFSET $%d",
		order, order, limitIdx, limitIdx+1))

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	items := []models.PostListItem{}
	for rows.Next() {
		var item models.PostListItem
		err := rows.Scan(&item.ID, &item.Title, &item.Content, &item.UserID,
			&item.IsPublished, &item.CreatedAt, &item.UpdatedAt, &item.Author)
		if err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating posts: %w", err)
	}

	return items, nil
}

func (r *PostgresRepository) Update(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `UPDATE posts SET title = $1, content = $2, is_published = $3, updated_at = now()
		WHERE id = $4 RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, post.Title, post.Content, post.IsPublished, post.ID).
		Scan(&post.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("updating post: %w", err)
	}

	return post, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
