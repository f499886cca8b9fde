package repository

import (
	"context"
	"fmt"

	"github.com/Sudarsan9786/nool-erp/internal/jobwork/entity"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sequencer hands out monotonically increasing numbers per named counter.
// tx is the transaction the number will be used in; implementations may ignore it.
type Sequencer interface {
	Next(ctx context.Context, tx *gorm.DB, name string) (int64, error)
}

// DBSequencer keeps counters in jw_counters. The UPDATE row lock serialises
// concurrent creators until their transaction ends, so a rolled-back order
// gives its number back.
type DBSequencer struct{}

func (DBSequencer) Next(ctx context.Context, tx *gorm.DB, name string) (int64, error) {
	db := tx.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.Counter{Name: name, Value: 0}).Error; err != nil {
		return 0, fmt.Errorf("init counter %s: %w", name, err)
	}
	if err := db.Model(&entity.Counter{}).Where("name = ?", name).
		Update("value", gorm.Expr("value + 1")).Error; err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", name, err)
	}
	var c entity.Counter
	if err := db.Where("name = ?", name).First(&c).Error; err != nil {
		return 0, fmt.Errorf("read counter %s: %w", name, err)
	}
	return c.Value, nil
}

// RedisSequencer uses INCR, shared by every API instance. Numbers taken by
// a rolled-back transaction are not reused.
type RedisSequencer struct {
	client *redis.Client
	prefix string
}

func NewRedisSequencer(client *redis.Client) *RedisSequencer {
	return &RedisSequencer{client: client, prefix: "nool:seq:"}
}

func (s *RedisSequencer) Next(ctx context.Context, _ *gorm.DB, name string) (int64, error) {
	n, err := s.client.Incr(ctx, s.prefix+name).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", name, err)
	}
	return n, nil
}
