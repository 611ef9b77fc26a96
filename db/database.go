package db

import (
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// defaultCategories is the fixed seed set, inserted once on first run.
var defaultCategories = []Category{
	{Name: "Game Mods", Description: "General game modifications"},
	{Name: "Character Mods", Description: "Character replacements and additions"},
	{Name: "Stage Mods", Description: "Custom stages and stage modifications"},
	{Name: "Music Mods", Description: "Custom music and sound modifications"},
	{Name: "Texture Mods", Description: "Texture and visual modifications"},
	{Name: "Utility Mods", Description: "Tools and utilities"},
	{Name: "Experimental", Description: "Experimental and beta mods"},
}

// Open opens the SQLite database, migrates the schema and seeds the
// default categories. Safe to call on every start: migration and seeding
// are idempotent.
func Open(dbPath string) (*gorm.DB, error) {
	// Configure GORM logger
	newLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // Use standard log writer (os.Stdout)
		gormlogger.Config{
			SlowThreshold:             time.Second,     // Slow SQL threshold
			LogLevel:                  gormlogger.Warn, // Log level (Warn, Error, Info)
			IgnoreRecordNotFoundError: true,            // Ignore ErrRecordNotFound error
			ParameterizedQueries:      false,           // Log SQL queries with params
			Colorful:                  true,            // Enable color
		},
	)

	gdb, err := gorm.Open(gormlite.Open(dbPath), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	// A single connection serializes concurrent writers; SQLite locks the
	// whole file anyway, and queueing beats SQLITE_BUSY errors.
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	err = gdb.AutoMigrate(&User{}, &Mod{}, &Comment{}, &Download{}, &Category{}, &ModCategory{})
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}

	if err := seedDefaultCategories(gdb); err != nil {
		return nil, fmt.Errorf("failed to seed categories: %w", err)
	}

	return gdb, nil
}

// seedDefaultCategories inserts the fixed category list if absent.
// Lookup is by name alone so an edited description does not trigger a
// second insert against the unique name index.
func seedDefaultCategories(gdb *gorm.DB) error {
	for _, cat := range defaultCategories {
		var existing Category
		err := gdb.Where("name = ?", cat.Name).Attrs(cat).FirstOrCreate(&existing).Error
		if err != nil {
			return err
		}
	}
	return nil
}
