package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config is everything the process needs before it can talk to its stores.
// Runtime secrets (Stripe key, public base URL) live in the parameter
// table, not here.
type Config struct {
	HTTPAddr  string
	MySQLDSN  string
	RedisAddr string
	Currency  string
	StaticDir string
	LogFormat string
	LogLevel  string
}

// Load reads bookstore.yaml from the working directory or /etc/bookstore,
// with BOOKSTORE_* environment variables taking precedence. A missing
// config file is fine; missing keys fall back to the defaults below.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("bookstore")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/bookstore")
	v.SetEnvPrefix("BOOKSTORE")
	v.AutomaticEnv()

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("mysql_dsn", "root:root@tcp(localhost:3306)/bookstore?parseTime=true")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("currency", "usd")
	v.SetDefault("static_dir", "web/static")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return &Config{
		HTTPAddr:  v.GetString("http_addr"),
		MySQLDSN:  v.GetString("mysql_dsn"),
		RedisAddr: v.GetString("redis_addr"),
		Currency:  v.GetString("currency"),
		StaticDir: v.GetString("static_dir"),
		LogFormat: v.GetString("log_format"),
		LogLevel:  v.GetString("log_level"),
	}, nil
}
