package cli

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/Tempo/internal/config"
	"github.com/SmitUplenchwar2687/Tempo/internal/toystore"
)

// toyOptions holds the TOY store flags shared by run and todr.
type toyOptions struct {
	backend           string
	path              string
	key               string
	redisHost         string
	redisPort         int
	redisPassword     string
	redisDB           int
	redisCluster      bool
	redisClusterNodes []string
	redisPoolSize     int
	redisMaxRetries   int
	redisDialTimeout  time.Duration
}

func (o *toyOptions) addFlags(cmd *cobra.Command) {
	def := config.Default().TOY
	cmd.Flags().StringVar(&o.backend, "toy", def.Backend, "TOY store backend (none, file, memory, redis)")
	cmd.Flags().StringVar(&o.path, "toy-path", def.Path, "TOY record file for the file backend")
	cmd.Flags().StringVar(&o.key, "toy-key", def.Key, "TOY record name for the redis backend")
	cmd.Flags().StringVar(&o.redisHost, "redis-host", def.Redis.Host, "redis host (or host:port)")
	cmd.Flags().IntVar(&o.redisPort, "redis-port", def.Redis.Port, "redis port")
	cmd.Flags().StringVar(&o.redisPassword, "redis-password", "", "redis password")
	cmd.Flags().IntVar(&o.redisDB, "redis-db", 0, "redis database index")
	cmd.Flags().BoolVar(&o.redisCluster, "redis-cluster", false, "enable redis cluster mode")
	cmd.Flags().StringSliceVar(&o.redisClusterNodes, "redis-cluster-nodes", nil, "redis cluster nodes host:port list")
	cmd.Flags().IntVar(&o.redisPoolSize, "redis-pool-size", def.Redis.PoolSize, "redis connection pool size")
	cmd.Flags().IntVar(&o.redisMaxRetries, "redis-max-retries", def.Redis.MaxRetries, "redis max retries")
	cmd.Flags().DurationVar(&o.redisDialTimeout, "redis-dial-timeout", def.Redis.DialTimeout, "redis dial timeout")
}

// apply overrides cfg with the flags the user set explicitly.
func (o *toyOptions) apply(cmd *cobra.Command, cfg *config.TOYConfig) error {
	f := cmd.Flags()
	if f.Changed("toy") {
		cfg.Backend = o.backend
	}
	if f.Changed("toy-path") {
		cfg.Path = o.path
	}
	if f.Changed("toy-key") {
		cfg.Key = o.key
	}
	if f.Changed("redis-host") {
		cfg.Redis.Host = o.redisHost
	}
	if f.Changed("redis-port") {
		cfg.Redis.Port = o.redisPort
	}
	if f.Changed("redis-password") {
		cfg.Redis.Password = o.redisPassword
	}
	if f.Changed("redis-db") {
		cfg.Redis.DB = o.redisDB
	}
	if f.Changed("redis-cluster") {
		cfg.Redis.Cluster = o.redisCluster
	}
	if f.Changed("redis-cluster-nodes") {
		cfg.Redis.ClusterNodes = append([]string(nil), o.redisClusterNodes...)
	}
	if f.Changed("redis-pool-size") {
		cfg.Redis.PoolSize = o.redisPoolSize
	}
	if f.Changed("redis-max-retries") {
		cfg.Redis.MaxRetries = o.redisMaxRetries
	}
	if f.Changed("redis-dial-timeout") {
		cfg.Redis.DialTimeout = o.redisDialTimeout
	}

	if cfg.Backend != toystore.BackendRedis || cfg.Redis.Cluster {
		return nil
	}
	host, port, err := normalizeRedisHostPort(cfg.Redis.Host, cfg.Redis.Port)
	if err != nil {
		return err
	}
	cfg.Redis.Host = host
	cfg.Redis.Port = port
	return nil
}

func normalizeRedisHostPort(host string, port int) (string, int, error) {
	if strings.Contains(host, ":") {
		h, p, err := net.SplitHostPort(host)
		if err != nil {
			return "", 0, fmt.Errorf("invalid --redis-host value %q: %w", host, err)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return "", 0, fmt.Errorf("invalid redis port in --redis-host %q: %w", host, err)
		}
		host = h
		port = n
	}

	if host == "" {
		return "", 0, fmt.Errorf("redis host cannot be empty")
	}
	if port <= 0 {
		return "", 0, fmt.Errorf("redis port must be positive, got %d", port)
	}

	return host, port, nil
}
