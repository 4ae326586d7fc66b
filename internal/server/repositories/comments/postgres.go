package comments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	query := `INSERT INTO comments (post_id, user_id, content)
		VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, comment.PostID, comment.UserID, comment.Content).
		Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	return comment, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	query := `SELECT id, post_id, user_id, content, created_at, updated_at
		FROM comments WHERE id = $1`

	var c models.Comment
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("fetching comment: %w", err)
	}

	return &c, nil
}

func (r *PostgresRepository) ListForPost(ctx context.Context, postID int64, query models.CommentListQuery) ([]models.CommentListItem, error) {
	order := "DESC"
	if query.SortAsc {
		order = "ASC"
	}
	q := fmt.Sprintf(`SELECT c.id, c.post_id, c.user_id, c.content,
			c.created_at, c.updated_at, u.username
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at %s, c.id %s LIMIT $2 OFFSET $3`, order, order)

	rows, err := r.db.QueryContext(ctx, q, postID, query.Limit, query.Skip)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	items := []models.CommentListItem{}
	for rows.Next() {
		var item models.CommentListItem
		err := rows.Scan(&item.ID, &item.PostID, &item.UserID, &item.Content,
			&item.CreatedAt, &item.UpdatedAt, &item.Author)
		if err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comments: %w", err)
	}

	return items, nil
}

func (r *PostgresRepository) Update(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	query := `UPDATE comments SET content = $1, updated_at = now()
		WHERE id = $2 RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, comment.Content, comment.ID).
		Scan(&comment.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("updating comment: %w", err)
	}

	return comment, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
