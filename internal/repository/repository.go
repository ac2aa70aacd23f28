package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/config"
)

// ErrEditConflict 表示记录在读取之后已被其他进程修改（version 不匹配）或已被删除
var ErrEditConflict = errors.New("记录已被修改")

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

// versionedUpdate 执行带 version 条件的 UPDATE ... RETURNING，没有匹配的行时返回 ErrEditConflict
func (r *Repository) versionedUpdate(ctx context.Context, query string, args []any, dst ...any) error {
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEditConflict
		}
		return err
	}
	return nil
}
