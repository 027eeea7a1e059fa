// Package redisrepo stores sessions in redis, one JSON record per session
// identifier, expiring with the session lifetime. Use it when the app runs
// behind more than one process or should survive restarts.
package redisrepo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/paperfeed/paperfeed/sessions"
)

const keyPrefix = "session:"

// Connect parses the redis URL, opens a client, and verifies connectivity
// with a ping before returning it.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "[redisrepo.Connect] parse URL")
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "[redisrepo.Connect] ping")
	}
	return client, nil
}

// Repo implements sessions.Repo on top of a redis client.
type Repo struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Repo {
	return &Repo{client: client, ttl: ttl}
}

func (r *Repo) Get(ctx context.Context, id string) (sessions.Session, error) {
	if id == "" {
		return sessions.Session{}, sessions.NotFoundErr
	}

	payload, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return sessions.Session{}, sessions.NotFoundErr
	}
	if err != nil {
		return sessions.Session{}, errors.Wrap(err, "[redisrepo.Get] redis GET")
	}

	var session sessions.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return sessions.Session{}, errors.Wrap(err, "[redisrepo.Get] decode record")
	}
	return session, nil
}

func (r *Repo) Upsert(ctx context.Context, id string, session sessions.Session) error {
	if id == "" {
		return sessions.NotFoundErr
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "[redisrepo.Upsert] encode record")
	}
	if err := r.client.Set(ctx, keyPrefix+id, payload, r.ttl).Err(); err != nil {
		return errors.Wrap(err, "[redisrepo.Upsert] redis SET")
	}
	return nil
}

func (r *Repo) Regenerate(ctx context.Context, id string) (string, error) {
	session, err := r.Get(ctx, id)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return "", errors.Wrap(err, "[redisrepo.Regenerate] encode record")
	}

	// DEL and SET travel in one transaction so the old identifier cannot
	// outlive the new one.
	newID := sessions.NewID()
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, keyPrefix+id)
	pipe.Set(ctx, keyPrefix+newID, payload, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", errors.Wrap(err, "[redisrepo.Regenerate] redis pipeline")
	}
	return newID, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return errors.Wrap(err, "[redisrepo.Delete] redis DEL")
	}
	return nil
}
