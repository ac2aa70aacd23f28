// Package progress 在 redis 中记录正在运行的实验已完成的试验数量
package progress

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNoProgress = errors.New("没有该实验的进度信息")

type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

type Tracker struct {
	rdb        *redis.Client
	expiration time.Duration
	timeout    time.Duration
}

func NewTracker(rdb *redis.Client, expiration, timeout time.Duration) *Tracker {
	return &Tracker{
		rdb:        rdb,
		expiration: expiration,
		timeout:    timeout,
	}
}

func key(experimentID string) string {
	return fmt.Sprintf("experiment_progress_%s", experimentID)
}

func (t *Tracker) Set(experimentID string, completed, total int) error {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	_, err := t.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key(experimentID), "completed", completed, "total", total)
		pipe.Expire(ctx, key(experimentID), t.expiration)
		return nil
	})
	return err
}

func (t *Tracker) Get(experimentID string) (*Progress, error) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	fields, err := t.rdb.HGetAll(ctx, key(experimentID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrNoProgress
	}

	p := &Progress{}
	if p.Completed, err = strconv.Atoi(fields["completed"]); err != nil {
		return nil, err
	}
	if p.Total, err = strconv.Atoi(fields["total"]); err != nil {
		return nil, err
	}

	return p, nil
}

func (t *Tracker) Clear(experimentID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	return t.rdb.Del(ctx, key(experimentID)).Err()
}
