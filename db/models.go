package db

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account in the mod sharing database
type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;not null"` // Unique login name
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"` // SHA-256 hex digest, never the plaintext
	LastLogin    *time.Time
	IsActive     bool `gorm:"default:true"`
	IsModerator  bool `gorm:"default:false"`
	AvatarPath   string
	Bio          string
}

// Mod represents an uploaded mod listing. The upload date is CreatedAt.
type Mod struct {
	gorm.Model
	Title             string `gorm:"not null"`
	Description       string
	AuthorID          uint
	Author            User
	FilePath          string `gorm:"not null"` // Path to the stored file under shared_mods
	FileSize          int64  // Size in bytes, measured at upload time
	DownloadCount     int64  `gorm:"default:0"`
	Rating            float64 `gorm:"default:0"` // Mean of all rated comments
	RatingCount       int64   `gorm:"default:0"`
	IsPublic          bool    // Set explicitly on create; a column default would swallow false
	IsFeatured        bool    `gorm:"default:false"`
	GameCompatibility string  `gorm:"not null"`
	Version           string  `gorm:"default:1.0"`
	Tags              string  // Free-text, comma separated
	ThumbnailPath     string
}

// Comment represents a remark and optional 1-5 star rating on a mod
type Comment struct {
	gorm.Model
	ModID      uint `gorm:"index"`
	UserID     uint
	User       User
	Body       string `gorm:"not null"`
	Rating     *int   // nil when the comment carries no rating
	IsApproved bool   `gorm:"default:true"`
}

// Download is an append-only log entry for one download action
type Download struct {
	gorm.Model
	ModID  uint  `gorm:"index"`
	UserID *uint // nil for anonymous downloads
	Origin string
}

// Category is a named classification tag, optionally hierarchical
type Category struct {
	gorm.Model
	Name        string `gorm:"uniqueIndex;not null"`
	Description string
	ParentID    *uint
}

// ModCategory joins mods to categories, composite key on (mod, category)
type ModCategory struct {
	ModID      uint `gorm:"primaryKey"`
	CategoryID uint `gorm:"primaryKey"`
}
