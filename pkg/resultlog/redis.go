// Package resultlog publishes the outcome of a verification run to Redis so
// an orchestrator can poll or subscribe for it without parsing the trail.
package resultlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SuiteResult is the run state published after a suite finishes, whether it
// passed or failed.
//
// Redis keys:
//
//	SET  esqlverify:suite:<name>:state  <JSON>  EX <ttl>  — for polling
//	PUB  esqlverify:suite:<name>                          — for subscriptions
type SuiteResult struct {
	Suite      string    `json:"suite"`
	Status     string    `json:"status"` // "success" | "failed"
	Checks     int       `json:"checks"`
	Failures   int       `json:"failures"`
	Skipped    int       `json:"skipped"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMs int64     `json:"duration_ms"`
	Error      *string   `json:"error,omitempty"`
}

// Config - Redis result publishing settings
type Config struct {
	// Address - host:port of the Redis server
	Address string `yaml:"address"`

	// Password - optional AUTH password
	Password string `yaml:"password"`

	// DB - Redis database number
	DB int `yaml:"db"`

	// Name - suite name used in the key and channel
	Name string `yaml:"name"`

	// TTL - state key lifetime in seconds
	TTL int `yaml:"ttl"`
}

// RedisPublisher publishes suite results to Redis.
type RedisPublisher struct {
	client *redis.Client
	config Config
}

// NewRedisPublisher creates a publisher from the configuration.
func NewRedisPublisher(config Config) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})
	return &RedisPublisher{client: client, config: config}
}

// Publish records the suite outcome:
//   - SET esqlverify:suite:<name>:state <JSON> EX <ttl>  → polling
//   - PUBLISH esqlverify:suite:<name> <JSON>             → pub/sub
//
// Called regardless of outcome; execErr == nil means the suite passed.
func (p *RedisPublisher) Publish(ctx context.Context, result SuiteResult, execErr error) error {
	result.Suite = p.config.Name
	result.DurationMs = result.FinishedAt.Sub(result.StartedAt).Milliseconds()

	if execErr != nil {
		result.Status = "failed"
		errStr := execErr.Error()
		result.Error = &errStr
	} else {
		result.Status = "success"
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	stateKey := fmt.Sprintf("esqlverify:suite:%s:state", p.config.Name)
	eventChannel := fmt.Sprintf("esqlverify:suite:%s", p.config.Name)
	ttl := time.Duration(p.config.TTL) * time.Second

	if err := p.client.Set(ctx, stateKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}

	if err := p.client.Publish(ctx, eventChannel, payload).Err(); err != nil {
		return fmt.Errorf("redis PUBLISH failed: %w", err)
	}

	return nil
}

// Close closes the Redis connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
