package cmd

import (
	"errors"
	"fmt"
	"os"

	"wiiware-modder/config"
	"wiiware-modder/db"
	"wiiware-modder/logger"
	"wiiware-modder/registry"

	"go.uber.org/zap"
)

// bootstrap handles shared initialization logic for commands.
func bootstrap(path string) (config.Config, *registry.Registry) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
	}

	gdb, err := db.Open(cfg.DatabasePath)
	if err != nil {
		logger.Log.Fatalw("Failed to initialize database", zap.Error(err))
	}
	logger.Log.Infow("Database initialized", zap.String("path", cfg.DatabasePath))

	return cfg, registry.New(gdb)
}

// mustAuthenticate resolves --as/--password credentials or exits. A bad
// credential pair is a normal outcome for the registry but terminal for
// a one-shot command.
func mustAuthenticate(reg *registry.Registry, identifier, password string) *db.User {
	if identifier == "" || password == "" {
		fmt.Println("Error: --as and --password are required for this command.")
		os.Exit(1)
	}

	user, err := reg.Authenticate(identifier, password)
	if err != nil {
		logger.Log.Errorw("Authentication failed", zap.Error(err))
		fmt.Println("Error: could not reach the mod library, see the log for details.")
		os.Exit(1)
	}
	if user == nil {
		fmt.Println("Invalid credentials or inactive account.")
		os.Exit(1)
	}
	return user
}

// reportRegistryError prints a user-facing message for a registry error.
// Validation and duplicate errors name the problem; storage errors stay
// generic with the detail kept in the log.
func reportRegistryError(err error) {
	var storageErr *registry.StorageError
	switch {
	case err == nil:
		return
	case errors.As(err, &storageErr):
		logger.Log.Errorw("Registry storage failure", zap.Error(err))
		fmt.Println("Error: the mod library is unavailable, see the log for details.")
	default:
		fmt.Printf("Error: %v\n", err)
	}
}
