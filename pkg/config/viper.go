// Package config is responsible for initializing the application's
// configuration. It uses the Viper library to read settings from a config
// file, environment variables, and command-line flags, providing a
// unified configuration system.
package config

import (
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tactipus/courtlistener/internal/logging"
)

// InitConfig initializes the application's configuration using Viper.
// It sets up default values, defines configuration search paths, and
// enables reading from environment variables. Called once at startup.
func InitConfig() {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/courtlistener/")
	viper.AddConfigPath("$HOME/.courtlistener")

	// --- Set Defaults ---
	const defaultUA = "courtlistener-scraper/1.0 (+https://github.com/tactipus/courtlistener)"
	viper.SetDefault("scraper.user_agent", defaultUA)
	viper.SetDefault("scraper.rate_minutes", 30)
	viper.SetDefault("scraper.request_timeout", "30s")
	viper.SetDefault("scraper.daemon", false)

	viper.SetDefault("database.provider", "postgres")
	viper.SetDefault("database.postgres.dsn", "")

	viper.SetDefault("storage.provider", "local")
	viper.SetDefault("storage.local.base_dir", "data/files")
	viper.SetDefault("storage.gcs.bucket_name", "")

	viper.SetDefault("queue.provider", "memory")
	viper.SetDefault("queue.gcp.project_id", "")
	viper.SetDefault("queue.gcp.topic_id", "")

	viper.SetDefault("ops.listen_addr", ":8080")

	// --- Environment Variables ---
	viper.SetEnvPrefix("SCRAPER") // e.g. SCRAPER_DATABASE_POSTGRES_DSN
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// --- Read Config File ---
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logging.L.Warn("Config file not found; using defaults and environment variables.")
		} else {
			logging.L.Error("Error reading config file", zap.Error(err))
		}
	} else {
		logging.L.Info("Using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}
