package config

import (
	"os"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Server Server `yaml:"server"`
	Auth   Auth   `yaml:"auth"`
}

type Server struct {
	Addr          string `yaml:"addr"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	CacheTTLSec   int    `yaml:"cacheTTLSec"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Auth struct {
	SessionTTLHours int `yaml:"sessionTTLHours"`
	LoginAttempts   int `yaml:"loginAttempts"`
	ThrottleMinutes int `yaml:"throttleMinutes"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	// Environment wins over the file so deployments can inject secrets
	// without rewriting config.
	if dsn := os.Getenv("HOMESTEAD_POSTGRES_DSN"); dsn != "" {
		config.Server.PostgresDsn = dsn
	}
	if addr := os.Getenv("HOMESTEAD_REDIS_ADDR"); addr != "" {
		config.Server.RedisAddr = addr
	}
	if addr := os.Getenv("HOMESTEAD_ADDR"); addr != "" {
		config.Server.Addr = addr
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":8000"
	}
	if config.Auth.SessionTTLHours <= 0 {
		config.Auth.SessionTTLHours = 24 * 30
	}
	if config.Auth.LoginAttempts <= 0 {
		config.Auth.LoginAttempts = 10
	}
	if config.Auth.ThrottleMinutes <= 0 {
		config.Auth.ThrottleMinutes = 15
	}

	return config, nil
}
