package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/domain"
)

// cache 是试卷缓存用到的 redis 命令，由 *redis.Client 实现
type cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// 删除试卷后写入该标记，阻止并发的读请求把旧数据重新写回缓存
const deletedQuestionPaperMarker = "deleted"

// domain.QuestionPaper 在 JSON 中不包含 version，缓存时需要单独保存
type cachedQuestionPaper struct {
	domain.QuestionPaper
	Version int32 `json:"version"`
}

func questionPaperCacheKey(id int64) string {
	return fmt.Sprintf("question_paper_%d", id)
}

func (r *Repository) cacheContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(r.cfg.Redis.OperationExpiration)*time.Second)
}

func (r *Repository) paperExpiration() time.Duration {
	return time.Duration(r.cfg.Cache.PaperExpiration) * time.Second
}

func (r *Repository) getCachedQuestionPaper(id int64) (*domain.QuestionPaper, bool) {
	if r.rdb == nil {
		return nil, false
	}

	ctx, cancel := r.cacheContext()
	defer cancel()

	data, err := r.rdb.Get(ctx, questionPaperCacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logCacheError("读取试卷缓存失败", id, err)
		}
		return nil, false
	}
	if string(data) == deletedQuestionPaperMarker {
		return nil, false
	}

	cached := cachedQuestionPaper{}
	if err := json.Unmarshal(data, &cached); err != nil {
		logCacheError("试卷缓存反序列化失败", id, err)
		return nil, false
	}

	paper := cached.QuestionPaper
	paper.Version = cached.Version
	return &paper, true
}

func encodeQuestionPaper(paper *domain.QuestionPaper) ([]byte, error) {
	return json.Marshal(cachedQuestionPaper{QuestionPaper: *paper, Version: paper.Version})
}

// fillQuestionPaperCache 在缓存未命中后回填数据库中读到的试卷。
// 只在键不存在时写入：同一时间的更新或删除已经写入的内容不会被读请求覆盖。
func (r *Repository) fillQuestionPaperCache(paper *domain.QuestionPaper) {
	if r.rdb == nil {
		return
	}

	data, err := encodeQuestionPaper(paper)
	if err != nil {
		logCacheError("试卷缓存序列化失败", paper.ID, err)
		return
	}

	ctx, cancel := r.cacheContext()
	defer cancel()

	if err := r.rdb.SetNX(ctx, questionPaperCacheKey(paper.ID), data, r.paperExpiration()).Err(); err != nil {
		logCacheError("写入试卷缓存失败", paper.ID, err)
	}
}

// storeQuestionPaper 在试卷更新成功后直接覆盖缓存
func (r *Repository) storeQuestionPaper(paper *domain.QuestionPaper) {
	if r.rdb == nil {
		return
	}

	data, err := encodeQuestionPaper(paper)
	if err != nil {
		logCacheError("试卷缓存序列化失败", paper.ID, err)
		return
	}

	ctx, cancel := r.cacheContext()
	defer cancel()

	if err := r.rdb.Set(ctx, questionPaperCacheKey(paper.ID), data, r.paperExpiration()).Err(); err != nil {
		logCacheError("写入试卷缓存失败", paper.ID, err)
	}
}

func (r *Repository) markQuestionPaperDeleted(id int64) {
	if r.rdb == nil {
		return
	}

	ctx, cancel := r.cacheContext()
	defer cancel()

	if err := r.rdb.Set(ctx, questionPaperCacheKey(id), deletedQuestionPaperMarker, r.paperExpiration()).Err(); err != nil {
		logCacheError("删除试卷缓存失败", id, err)
	}
}
