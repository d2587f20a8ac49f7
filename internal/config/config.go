// Package config loads the JSON configuration for a Tempo session.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/SmitUplenchwar2687/Tempo/internal/stddev"
	"github.com/SmitUplenchwar2687/Tempo/internal/toystore"
)

// Config is the top-level configuration for a Tempo session.
type Config struct {
	Clock   ClockConfig   `json:"clock"`
	Console ConsoleConfig `json:"console"`
	TOY     TOYConfig     `json:"toy"`
	Machine MachineConfig `json:"machine"`
	Monitor MonitorConfig `json:"monitor"`
}

// ClockConfig holds interval timer settings.
type ClockConfig struct {
	TicksPerSecond int   `json:"ticks_per_second"`
	InitialDelay   int32 `json:"initial_delay"`
}

// ConsoleConfig holds terminal receiver and transmitter settings.
type ConsoleConfig struct {
	InputMode   string `json:"input_mode"`
	OutputMode  string `json:"output_mode"`
	InputWait   int32  `json:"input_wait"`
	OutputWait  int32  `json:"output_wait"`
	HaltOnBreak bool   `json:"halt_on_break"`
	BreakChar   byte   `json:"break_char"`
	QuitChar    byte   `json:"quit_char"`
}

// TOYConfig selects where the time-of-year record is kept.
type TOYConfig struct {
	Backend string         `json:"backend"`
	Path    string         `json:"path"`
	Key     string         `json:"key"`
	Redis   TOYRedisConfig `json:"redis"`
}

// TOYRedisConfig configures the Redis backend.
type TOYRedisConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	Password     string        `json:"password"`
	DB           int           `json:"db"`
	Cluster      bool          `json:"cluster"`
	ClusterNodes []string      `json:"cluster_nodes"`
	PoolSize     int           `json:"pool_size"`
	MaxRetries   int           `json:"max_retries"`
	DialTimeout  time.Duration `json:"dial_timeout"`
}

// MachineConfig holds run loop settings.
type MachineConfig struct {
	Slice int64         `json:"slice"`
	Idle  time.Duration `json:"idle"`
}

// MonitorConfig holds the observation server settings. An empty Addr
// disables the server; an empty Record disables trace export.
type MonitorConfig struct {
	Addr   string `json:"addr"`
	Record string `json:"record"`
}

// MaxTicksPerSecond bounds the clock rate.
const MaxTicksPerSecond = 1000

// Default returns a Config with the stock settings.
func Default() Config {
	return Config{
		Clock: ClockConfig{
			TicksPerSecond: stddev.DefaultTicksPerSecond,
			InitialDelay:   stddev.DefaultClockDelay,
		},
		Console: ConsoleConfig{
			InputMode:  stddev.Mode8B.String(),
			OutputMode: stddev.Mode8B.String(),
			OutputWait: stddev.DefaultOutputWait,
			QuitChar:   0x1d,
		},
		TOY: TOYConfig{
			Backend: toystore.BackendNone,
			Key:     "default",
			Redis: TOYRedisConfig{
				Host:        "localhost",
				Port:        6379,
				PoolSize:    4,
				MaxRetries:  3,
				DialTimeout: 5 * time.Second,
			},
		},
		Machine: MachineConfig{
			Slice: 1000,
			Idle:  time.Millisecond,
		},
	}
}

// Validate checks that the config is valid.
func (c Config) Validate() error {
	if c.Clock.TicksPerSecond <= 0 || c.Clock.TicksPerSecond > MaxTicksPerSecond {
		return fmt.Errorf("ticks_per_second must be in 1..%d, got %d", MaxTicksPerSecond, c.Clock.TicksPerSecond)
	}
	if c.Clock.InitialDelay <= 0 {
		return fmt.Errorf("initial_delay must be positive, got %d", c.Clock.InitialDelay)
	}
	if _, err := stddev.ParseMode(c.Console.InputMode); err != nil {
		return fmt.Errorf("console.input_mode: %w", err)
	}
	if _, err := stddev.ParseMode(c.Console.OutputMode); err != nil {
		return fmt.Errorf("console.output_mode: %w", err)
	}
	if c.Console.InputWait < 0 {
		return fmt.Errorf("input_wait must not be negative, got %d", c.Console.InputWait)
	}
	if c.Console.OutputWait <= 0 {
		return fmt.Errorf("output_wait must be positive, got %d", c.Console.OutputWait)
	}
	if c.Console.BreakChar != 0 && c.Console.BreakChar == c.Console.QuitChar {
		return fmt.Errorf("break_char and quit_char must differ, both are %#x", c.Console.BreakChar)
	}
	if err := c.TOY.validate(); err != nil {
		return err
	}
	if c.Machine.Slice <= 0 {
		return fmt.Errorf("machine.slice must be positive, got %d", c.Machine.Slice)
	}
	if c.Machine.Idle < 0 {
		return fmt.Errorf("machine.idle must not be negative, got %s", c.Machine.Idle)
	}
	return nil
}

func (t TOYConfig) validate() error {
	switch t.Backend {
	case toystore.BackendNone, toystore.BackendMemory:
	case toystore.BackendFile:
		if t.Path == "" {
			return fmt.Errorf("toy.path is required for the file backend")
		}
	case toystore.BackendRedis:
		if t.Redis.Cluster {
			if len(t.Redis.ClusterNodes) == 0 {
				return fmt.Errorf("toy.redis.cluster_nodes is required when cluster=true")
			}
			break
		}
		if t.Redis.Host == "" {
			return fmt.Errorf("toy.redis.host is required")
		}
		if t.Redis.Port <= 0 {
			return fmt.Errorf("toy.redis.port must be positive, got %d", t.Redis.Port)
		}
	default:
		return fmt.Errorf("unknown toy backend %q, must be one of: none, file, memory, redis", t.Backend)
	}
	return nil
}

// Board converts the clock and console sections to device settings.
func (c Config) Board() (stddev.Config, error) {
	in, err := stddev.ParseMode(c.Console.InputMode)
	if err != nil {
		return stddev.Config{}, err
	}
	out, err := stddev.ParseMode(c.Console.OutputMode)
	if err != nil {
		return stddev.Config{}, err
	}
	return stddev.Config{
		TicksPerSecond: c.Clock.TicksPerSecond,
		ClockDelay:     c.Clock.InitialDelay,
		InputWait:      c.Console.InputWait,
		OutputWait:     c.Console.OutputWait,
		InputMode:      in,
		OutputMode:     out,
		HaltOnBreak:    c.Console.HaltOnBreak,
	}, nil
}

// StoreOptions converts the toy section for toystore.Open.
func (t TOYConfig) StoreOptions() toystore.Options {
	return toystore.Options{
		Backend: t.Backend,
		Path:    t.Path,
		Redis: toystore.RedisConfig{
			Host:         t.Redis.Host,
			Port:         t.Redis.Port,
			Password:     t.Redis.Password,
			DB:           t.Redis.DB,
			Cluster:      t.Redis.Cluster,
			ClusterNodes: append([]string(nil), t.Redis.ClusterNodes...),
			PoolSize:     t.Redis.PoolSize,
			MaxRetries:   t.Redis.MaxRetries,
			DialTimeout:  t.Redis.DialTimeout,
			Key:          t.Key,
		},
	}
}

// LoadFile reads a JSON config file and merges it with defaults.
// Fields not specified in the file retain their default values.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	// Durations are strings and some zero values are meaningful, so
	// decode through an intermediate struct.
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}

	if raw.Clock.TicksPerSecond > 0 {
		cfg.Clock.TicksPerSecond = raw.Clock.TicksPerSecond
	}
	if raw.Clock.InitialDelay > 0 {
		cfg.Clock.InitialDelay = raw.Clock.InitialDelay
	}

	if raw.Console.InputMode != "" {
		cfg.Console.InputMode = raw.Console.InputMode
	}
	if raw.Console.OutputMode != "" {
		cfg.Console.OutputMode = raw.Console.OutputMode
	}
	if raw.Console.InputWait != nil {
		cfg.Console.InputWait = *raw.Console.InputWait
	}
	if raw.Console.OutputWait > 0 {
		cfg.Console.OutputWait = raw.Console.OutputWait
	}
	if raw.Console.HaltOnBreak != nil {
		cfg.Console.HaltOnBreak = *raw.Console.HaltOnBreak
	}
	if raw.Console.BreakChar != nil {
		cfg.Console.BreakChar = *raw.Console.BreakChar
	}
	if raw.Console.QuitChar != nil {
		cfg.Console.QuitChar = *raw.Console.QuitChar
	}

	if raw.TOY.Backend != "" {
		cfg.TOY.Backend = raw.TOY.Backend
	}
	if raw.TOY.Path != "" {
		cfg.TOY.Path = raw.TOY.Path
	}
	if raw.TOY.Key != "" {
		cfg.TOY.Key = raw.TOY.Key
	}
	r := raw.TOY.Redis
	if r.Host != "" {
		cfg.TOY.Redis.Host = r.Host
	}
	if r.Port > 0 {
		cfg.TOY.Redis.Port = r.Port
	}
	if r.Password != "" {
		cfg.TOY.Redis.Password = r.Password
	}
	if r.DB > 0 {
		cfg.TOY.Redis.DB = r.DB
	}
	if r.Cluster {
		cfg.TOY.Redis.Cluster = true
	}
	if len(r.ClusterNodes) > 0 {
		cfg.TOY.Redis.ClusterNodes = r.ClusterNodes
	}
	if r.PoolSize > 0 {
		cfg.TOY.Redis.PoolSize = r.PoolSize
	}
	if r.MaxRetries > 0 {
		cfg.TOY.Redis.MaxRetries = r.MaxRetries
	}
	if r.DialTimeout != "" {
		d, err := time.ParseDuration(r.DialTimeout)
		if err != nil {
			return cfg, fmt.Errorf("parsing toy.redis.dial_timeout: %w", err)
		}
		cfg.TOY.Redis.DialTimeout = d
	}

	if raw.Machine.Slice > 0 {
		cfg.Machine.Slice = raw.Machine.Slice
	}
	if raw.Machine.Idle != "" {
		d, err := time.ParseDuration(raw.Machine.Idle)
		if err != nil {
			return cfg, fmt.Errorf("parsing machine.idle: %w", err)
		}
		cfg.Machine.Idle = d
	}

	if raw.Monitor.Addr != "" {
		cfg.Monitor.Addr = raw.Monitor.Addr
	}
	if raw.Monitor.Record != "" {
		cfg.Monitor.Record = raw.Monitor.Record
	}

	return cfg, nil
}

// rawConfig is the JSON-friendly representation with string durations.
type rawConfig struct {
	Clock struct {
		TicksPerSecond int   `json:"ticks_per_second"`
		InitialDelay   int32 `json:"initial_delay"`
	} `json:"clock"`
	Console struct {
		InputMode   string `json:"input_mode"`
		OutputMode  string `json:"output_mode"`
		InputWait   *int32 `json:"input_wait"`
		OutputWait  int32  `json:"output_wait"`
		HaltOnBreak *bool  `json:"halt_on_break"`
		BreakChar   *byte  `json:"break_char"`
		QuitChar    *byte  `json:"quit_char"`
	} `json:"console"`
	TOY struct {
		Backend string `json:"backend"`
		Path    string `json:"path"`
		Key     string `json:"key"`
		Redis   struct {
			Host         string   `json:"host"`
			Port         int      `json:"port"`
			Password     string   `json:"password"`
			DB           int      `json:"db"`
			Cluster      bool     `json:"cluster"`
			ClusterNodes []string `json:"cluster_nodes"`
			PoolSize     int      `json:"pool_size"`
			MaxRetries   int      `json:"max_retries"`
			DialTimeout  string   `json:"dial_timeout"`
		} `json:"redis"`
	} `json:"toy"`
	Machine struct {
		Slice int64  `json:"slice"`
		Idle  string `json:"idle"`
	} `json:"machine"`
	Monitor struct {
		Addr   string `json:"addr"`
		Record string `json:"record"`
	} `json:"monitor"`
}

// WriteExample writes an example config file to the given path.
func WriteExample(path string) error {
	example := `{
  "clock": {
    "ticks_per_second": 100,
    "initial_delay": 5000
  },
  "console": {
    "input_mode": "8b",
    "output_mode": "8b",
    "input_wait": 0,
    "output_wait": 100,
    "halt_on_break": false,
    "break_char": 0,
    "quit_char": 29
  },
  "toy": {
    "backend": "file",
    "path": "tempo.toy",
    "key": "default",
    "redis": {
      "host": "localhost",
      "port": 6379,
      "db": 0,
      "pool_size": 4,
      "max_retries": 3,
      "dial_timeout": "5s"
    }
  },
  "machine": {
    "slice": 1000,
    "idle": "1ms"
  },
  "monitor": {
    "addr": ":8080",
    "record": ""
  }
}
`
	return os.WriteFile(path, []byte(example), 0o644)
}
