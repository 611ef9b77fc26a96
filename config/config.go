package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Values are loaded by Viper from a config file and/or environment variables.
type Config struct {
	DataDir    string `mapstructure:"DATA_DIR"`
	WitPath    string `mapstructure:"WIT_PATH"` // Optional explicit path to the wit executable
	AutoBackup bool   `mapstructure:"AUTO_BACKUP"`

	// Derived paths, not read from the environment.
	DatabasePath   string `mapstructure:"-"`
	SharedModsDir  string `mapstructure:"-"`
	DownloadsDir   string `mapstructure:"-"`
	BackupDir      string `mapstructure:"-"`
	PatchDir       string `mapstructure:"-"`
	BatchOutputDir string `mapstructure:"-"`
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)   // Path to look for the config file in
	viper.SetConfigName(".env") // Name of config file (without extension)
	viper.SetConfigType("env")  // REQUIRED if the config file does not have the extension in the name

	vipErr := viper.ReadInConfig()
	if _, ok := vipErr.(viper.ConfigFileNotFoundError); ok {
		slog.Info("Config file (.env) not found, relying on environment variables.")
	} else if vipErr != nil {
		return Config{}, fmt.Errorf("fatal error config file: %w", vipErr)
	}

	// Bind environment variables automatically.
	viper.AutomaticEnv()

	if err := viper.BindEnv("data_dir", "DATA_DIR"); err != nil {
		slog.Warn("Unable to bind DATA_DIR env var", "error", err)
	}
	if err := viper.BindEnv("wit_path", "WIT_PATH"); err != nil {
		slog.Warn("Unable to bind WIT_PATH env var", "error", err)
	}
	if err := viper.BindEnv("auto_backup", "AUTO_BACKUP"); err != nil {
		slog.Warn("Unable to bind AUTO_BACKUP env var", "error", err)
	}

	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %w", err)
	}

	processConfigDefaults(&config)

	if err := validateAndEnsureDirectories(&config); err != nil {
		return Config{}, err
	}

	return config, nil
}

// processConfigDefaults fills in defaults for values not provided by the
// environment or config file.
func processConfigDefaults(config *Config) {
	// Viper doesn't handle bool defaults from env well without explicit SetDefault,
	// so check the raw string value before trusting the unmarshalled zero value.
	autoBackupStr := viper.GetString("AUTO_BACKUP")
	if autoBackupStr == "" {
		config.AutoBackup = true
	} else {
		autoBackup, err := strconv.ParseBool(autoBackupStr)
		if err != nil {
			slog.Warn("Invalid value for AUTO_BACKUP ('"+autoBackupStr+"'), defaulting to true", "error", err)
			config.AutoBackup = true
		} else {
			config.AutoBackup = autoBackup
		}
	}

	if config.DataDir == "" {
		config.DataDir = "wiiware-data"
		slog.Info("DATA_DIR not set, defaulting to ./wiiware-data")
	}
}

// validateAndEnsureDirectories derives the managed directory layout under
// DataDir and creates anything that is missing.
func validateAndEnsureDirectories(config *Config) error {
	if config.DataDir == "" {
		slog.Error("DATA_DIR is not set")
		return fmt.Errorf("DATA_DIR is required")
	}

	config.SharedModsDir = filepath.Join(config.DataDir, "shared_mods")
	config.DownloadsDir = filepath.Join(config.DataDir, "downloads")
	config.BackupDir = filepath.Join(config.DataDir, "backups")
	config.PatchDir = filepath.Join(config.DataDir, "patches")
	config.BatchOutputDir = filepath.Join(config.DataDir, "batch_output")

	dirs := []string{
		config.DataDir,
		config.SharedModsDir,
		config.DownloadsDir,
		config.BackupDir,
		config.PatchDir,
		config.BatchOutputDir,
	}
	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			slog.Info("Directory does not exist, creating it", "path", dir)
			if err := os.MkdirAll(dir, 0755); err != nil {
				slog.Error("Failed to create directory", "path", dir, "error", err)
				return err
			}
		} else if err != nil {
			slog.Error("Failed to check directory", "path", dir, "error", err)
			return err
		}
	}

	// Place the database in the data dir for portability.
	config.DatabasePath = filepath.Join(config.DataDir, "mod_share.db")

	return nil
}
