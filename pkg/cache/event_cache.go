package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Eursukkul/event-booking/internal/models"
	"github.com/redis/go-redis/v9"
)

type EventCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func NewEventCache(client *redis.Client, ttl time.Duration) *EventCache {
	return &EventCache{client: client, ttl: ttl}
}

// generationTTL outlives any read-then-fill window by a wide margin.
const generationTTL = 24 * time.Hour

func eventKey(id uint) string {
	return fmt.Sprintf("event:%d", id)
}

// generationKey counts invalidations of an event entry.
func generationKey(id uint) string {
	return fmt.Sprintf("event:%d:gen", id)
}

// Get returns the cached event (nil on a miss) and the entry's current generation.
func (c *EventCache) Get(ctx context.Context, id uint) (*models.Event, int64, error) {
	pipe := c.client.Pipeline()
	dataCmd := pipe.Get(ctx, eventKey(id))
	genCmd := pipe.Get(ctx, generationKey(id))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, err
	}

	gen, err := genCmd.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, fmt.Errorf("read cache generation %d: %w", id, err)
	}

	data, err := dataCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, nil
	}
	if err != nil {
		return nil, gen, err
	}

	var event models.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, gen, fmt.Errorf("decode cached event %d: %w", id, err)
	}
	return &event, gen, nil
}

// Set stores the event unless the entry was invalidated after generation was read.
func (c *EventCache) Set(ctx context.Context, event *models.Event, generation int64) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	genKey := generationKey(event.ID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, eventKey(event.ID), data, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		// a Delete landed while filling
		return nil
	}
	return err
}

// Delete drops the entry and bumps its generation so in-flight fills are discarded.
func (c *EventCache) Delete(ctx context.Context, id uint) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, eventKey(id))
		pipe.Incr(ctx, generationKey(id))
		pipe.Expire(ctx, generationKey(id), generationTTL)
		return nil
	})
	return err
}
