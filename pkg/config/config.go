package config

import internalconfig "github.com/SmitUplenchwar2687/Tempo/internal/config"

// Config is the top-level configuration for a Tempo session.
type Config = internalconfig.Config

// ClockConfig holds interval timer settings.
type ClockConfig = internalconfig.ClockConfig

// ConsoleConfig holds terminal receiver and transmitter settings.
type ConsoleConfig = internalconfig.ConsoleConfig

// TOYConfig selects where the time-of-year record is kept.
type TOYConfig = internalconfig.TOYConfig

// TOYRedisConfig configures the Redis TOY backend.
type TOYRedisConfig = internalconfig.TOYRedisConfig

// MachineConfig holds run loop settings.
type MachineConfig = internalconfig.MachineConfig

// MonitorConfig holds the observation server settings.
type MonitorConfig = internalconfig.MonitorConfig

// Default returns a Config with the stock settings.
func Default() Config {
	return internalconfig.Default()
}

// LoadFile reads a JSON config file and merges it with defaults.
func LoadFile(path string) (Config, error) {
	return internalconfig.LoadFile(path)
}

// WriteExample writes an example config file to the given path.
func WriteExample(path string) error {
	return internalconfig.WriteExample(path)
}
