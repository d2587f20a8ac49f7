// Package toystore persists the TOY clock record behind a pluggable backend.
package toystore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// ErrUnknownBackend is returned by Open for an unrecognised backend name.
var ErrUnknownBackend = errors.New("toystore: unknown backend")

// Store abstracts the battery backup for the TOY record.
// Implementations must be safe for concurrent use.
type Store interface {
	// Load returns the persisted record. A store that has never been
	// written returns the zero record and no error.
	Load(ctx context.Context) (Record, error)

	// Save persists r, replacing any previous record.
	Save(ctx context.Context, r Record) error

	// Close releases backend resources. It is idempotent.
	Close() error

	// Name describes the store for logs.
	Name() string
}

// Options selects and configures a backend.
type Options struct {
	Backend string
	Path    string
	Redis   RedisConfig
}

// Open constructs the store selected by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendFile:
		return NewFileStore(opts.Path)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		return NewRedisStore(ctx, &opts.Redis)
	default:
		return nil, fmt.Errorf("%w %q, must be one of: file, memory, redis", ErrUnknownBackend, opts.Backend)
	}
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	Password     string        `json:"password,omitempty"`
	DB           int           `json:"db"`
	Cluster      bool          `json:"cluster"`
	ClusterNodes []string      `json:"cluster_nodes,omitempty"`
	PoolSize     int           `json:"pool_size"`
	MaxRetries   int           `json:"max_retries"`
	DialTimeout  time.Duration `json:"dial_timeout"`
	// Key names the record; it is stored under "tempo:toy:<Key>".
	Key string `json:"key"`
}
