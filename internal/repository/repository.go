package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/config"
)

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
	rdb    cache // 为 nil 时不使用缓存
}

func NewRepository(cfg *config.Config, dbpool *sql.DB, rdb *redis.Client) *Repository {
	r := &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
	// 避免把 nil 的 *redis.Client 存成非 nil 的接口
	if rdb != nil {
		r.rdb = rdb
	}
	return r
}

func (r *Repository) queryContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
}
