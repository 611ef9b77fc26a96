package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"wiiware-modder/db"
	"wiiware-modder/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MaxModFileSize is the upload size limit in bytes (100 MiB).
const MaxModFileSize = 100 * 1024 * 1024

// Registry owns all persistent mod sharing state: accounts, mod listings,
// comments, categories and download accounting. It is the only component
// that touches the backing database; every operation runs in its own
// short-lived transaction where atomicity matters.
type Registry struct {
	db *gorm.DB
}

// New wraps an already-opened database handle. Use db.Open to obtain one;
// it migrates the schema and seeds the category list.
func New(gdb *gorm.DB) *Registry {
	return &Registry{db: gdb}
}

// hashPassword produces the stored credential for a password.
// Single unsalted SHA-256, matching the credentials already on disk.
// Changing the scheme would invalidate every existing account.
func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// CreateAccount registers a new user and returns its id.
func (r *Registry) CreateAccount(username, email, password string) (uint, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return 0, validationError("username", "cannot be empty")
	}
	if email == "" {
		return 0, validationError("email", "cannot be empty")
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return 0, validationError("email", "invalid email format")
	}
	if len(password) < 6 {
		return 0, validationError("password", "must be at least 6 characters")
	}

	user := db.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashPassword(password),
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return storageError("create account", err)
		}
		if count > 0 {
			return ErrDuplicateUsername
		}
		if err := tx.Model(&db.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return storageError("create account", err)
		}
		if count > 0 {
			return ErrDuplicateEmail
		}
		if err := tx.Create(&user).Error; err != nil {
			return storageError("create account", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Log.Infow("Account created", zap.String("username", username), zap.Uint("id", user.ID))
	return user.ID, nil
}

// Authenticate checks credentials against the stored hash. The identifier
// matches either username or email. A mismatch or inactive account returns
// (nil, nil): failed login is a normal outcome, not an error.
func (r *Registry) Authenticate(identifier, password string) (*db.User, error) {
	var user db.User
	err := r.db.
		Where("(username = ? OR email = ?) AND password_hash = ? AND is_active = ?",
			identifier, identifier, hashPassword(password), true).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("authenticate", err)
	}

	now := time.Now()
	if err := r.db.Model(&user).Update("last_login", &now).Error; err != nil {
		return nil, storageError("authenticate", err)
	}
	user.LastLogin = &now

	logger.Log.Infow("Login", zap.String("username", user.Username))
	return &user, nil
}

// UploadModParams carries the inputs for UploadMod. FilePath must already
// point at the durable stored copy; the registry records it but never moves
// files itself.
type UploadModParams struct {
	Title             string
	Description       string
	AuthorID          uint
	FilePath          string
	GameCompatibility string
	Version           string
	Tags              string
	IsPublic          bool
}

// UploadMod stores a new mod listing and returns its id.
func (r *Registry) UploadMod(p UploadModParams) (uint, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.GameCompatibility = strings.TrimSpace(p.GameCompatibility)
	p.Version = strings.TrimSpace(p.Version)

	if p.Title == "" {
		return 0, validationError("title", "cannot be empty")
	}
	if p.GameCompatibility == "" {
		return 0, validationError("game_compatibility", "cannot be empty")
	}

	info, err := os.Stat(p.FilePath)
	if err != nil {
		return 0, validationError("file_path", "mod file does not exist")
	}
	if info.Size() > MaxModFileSize {
		return 0, fmt.Errorf("%w: maximum size is 100MB, got %.1fMB",
			ErrFileTooLarge, float64(info.Size())/(1024*1024))
	}

	if p.Version == "" {
		p.Version = "1.0"
	}

	mod := db.Mod{
		Title:             p.Title,
		Description:       strings.TrimSpace(p.Description),
		AuthorID:          p.AuthorID,
		FilePath:          p.FilePath,
		FileSize:          info.Size(),
		GameCompatibility: p.GameCompatibility,
		Version:           p.Version,
		Tags:              strings.TrimSpace(p.Tags),
		IsPublic:          p.IsPublic,
	}

	if err := r.db.Create(&mod).Error; err != nil {
		return 0, storageError("upload mod", err)
	}

	logger.Log.Infow("Mod uploaded", zap.String("title", mod.Title), zap.Uint("id", mod.ID))
	return mod.ID, nil
}

// ModSummary is one row of a mod listing.
type ModSummary struct {
	ID                uint
	Title             string
	Description       string
	UploadDate        time.Time
	DownloadCount     int64
	Rating            float64
	RatingCount       int64
	Version           string
	GameCompatibility string
	AuthorName        string
	ThumbnailPath     string
	IsPublic          bool
}

// sortColumns is the allow-list for ListMods ordering; anything else is
// rejected so arbitrary ORDER BY expressions can't be injected.
var sortColumns = map[string]string{
	"upload_date":    "mods.created_at",
	"title":          "mods.title",
	"download_count": "mods.download_count",
	"rating":         "mods.rating",
}

// ListModsOptions controls filtering, ordering and paging for ListMods.
type ListModsOptions struct {
	Limit       int
	Offset      int
	CategoryID  *uint
	SearchQuery string
	SortBy      string // one of upload_date, title, download_count, rating
	SortOrder   string // ASC or DESC
}

// ListMods returns public mod listings. Search matches title, description
// or tags case-insensitively. Ordering always tie-breaks on id so paging
// is deterministic.
func (r *Registry) ListMods(opts ListModsOptions) ([]ModSummary, error) {
	if opts.SortBy == "" {
		opts.SortBy = "upload_date"
	}
	column, ok := sortColumns[opts.SortBy]
	if !ok {
		return nil, validationError("sort_by", "unknown sort column: "+opts.SortBy)
	}

	order := strings.ToUpper(opts.SortOrder)
	if order == "" {
		order = "DESC"
	}
	if order != "ASC" && order != "DESC" {
		return nil, validationError("sort_order", "must be ASC or DESC")
	}

	if opts.Limit <= 0 {
		opts.Limit = 20
	}

	q := r.db.Model(&db.Mod{}).
		Select(`mods.id, mods.title, mods.description, mods.created_at AS upload_date,
			mods.download_count, mods.rating, mods.rating_count, mods.version,
			mods.game_compatibility, users.username AS author_name,
			mods.thumbnail_path, mods.is_public`).
		Joins("JOIN users ON users.id = mods.author_id").
		Where("mods.is_public = ?", true)

	if opts.CategoryID != nil {
		q = q.Where("mods.id IN (SELECT mod_id FROM mod_categories WHERE category_id = ?)", *opts.CategoryID)
	}

	if opts.SearchQuery != "" {
		term := "%" + opts.SearchQuery + "%"
		q = q.Where("mods.title LIKE ? OR mods.description LIKE ? OR mods.tags LIKE ?", term, term, term)
	}

	var summaries []ModSummary
	err := q.Order(fmt.Sprintf("%s %s, mods.id ASC", column, order)).
		Limit(opts.Limit).
		Offset(opts.Offset).
		Scan(&summaries).Error
	if err != nil {
		return nil, storageError("list mods", err)
	}
	return summaries, nil
}

// CommentView is a comment joined with its author's username.
type CommentView struct {
	ID          uint
	UserID      uint
	Username    string
	Body        string
	Rating      *int
	CreatedDate time.Time
}

// ModDetails is the full listing plus author info and approved comments.
type ModDetails struct {
	db.Mod
	AuthorName   string
	AuthorAvatar string
	Comments     []CommentView
}

// GetModDetails returns the full listing for one mod, or ErrNotFound.
// Only approved comments are included, newest first.
func (r *Registry) GetModDetails(modID uint) (*ModDetails, error) {
	var mod db.Mod
	err := r.db.Preload("Author").First(&mod, modID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageError("get mod details", err)
	}

	details := ModDetails{
		Mod:          mod,
		AuthorName:   mod.Author.Username,
		AuthorAvatar: mod.Author.AvatarPath,
	}

	err = r.db.Model(&db.Comment{}).
		Select(`comments.id, comments.user_id, users.username, comments.body,
			comments.rating, comments.created_at AS created_date`).
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.mod_id = ? AND comments.is_approved = ?", modID, true).
		Order("comments.created_at DESC").
		Scan(&details.Comments).Error
	if err != nil {
		return nil, storageError("get mod details", err)
	}

	return &details, nil
}

// AddComment attaches a comment, and optionally a 1-5 rating, to a mod.
// The comment insert and the rating recompute commit together or not at all.
func (r *Registry) AddComment(modID, userID uint, body string, rating *int) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return validationError("comment", "cannot be empty")
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return validationError("rating", "must be between 1 and 5")
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.Mod{}).Where("id = ?", modID).Count(&count).Error; err != nil {
			return storageError("add comment", err)
		}
		if count == 0 {
			return fmt.Errorf("mod %d: %w", modID, ErrNotFound)
		}
		if err := tx.Model(&db.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return storageError("add comment", err)
		}
		if count == 0 {
			return fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}

		comment := db.Comment{
			ModID:  modID,
			UserID: userID,
			Body:   body,
			Rating: rating,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return storageError("add comment", err)
		}

		if rating != nil {
			// Recompute the aggregates over all rated comments for this mod.
			err := tx.Exec(`
				UPDATE mods SET
					rating = (SELECT AVG(rating) FROM comments
						WHERE mod_id = ? AND rating IS NOT NULL AND deleted_at IS NULL),
					rating_count = (SELECT COUNT(*) FROM comments
						WHERE mod_id = ? AND rating IS NOT NULL AND deleted_at IS NULL)
				WHERE id = ?`, modID, modID, modID).Error
			if err != nil {
				return storageError("add comment", err)
			}
		}
		return nil
	})
}

// RecordDownload appends a download log entry and bumps the mod's counter
// in one transaction, so the counter and the log can never disagree.
func (r *Registry) RecordDownload(modID uint, userID *uint, origin string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		record := db.Download{
			ModID:  modID,
			UserID: userID,
			Origin: origin,
		}
		if err := tx.Create(&record).Error; err != nil {
			return storageError("record download", err)
		}

		res := tx.Model(&db.Mod{}).Where("id = ?", modID).
			UpdateColumn("download_count", gorm.Expr("download_count + ?", 1))
		if res.Error != nil {
			return storageError("record download", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("mod %d: %w", modID, ErrNotFound)
		}
		return nil
	})
}

// ListCategories returns every category ordered by name.
func (r *Registry) ListCategories() ([]db.Category, error) {
	var categories []db.Category
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, storageError("list categories", err)
	}
	return categories, nil
}

// ListModsByAuthor returns all of one author's listings, public and
// private, newest upload first.
func (r *Registry) ListModsByAuthor(authorID uint) ([]ModSummary, error) {
	var summaries []ModSummary
	err := r.db.Model(&db.Mod{}).
		Select(`mods.id, mods.title, mods.description, mods.created_at AS upload_date,
			mods.download_count, mods.rating, mods.rating_count, mods.version,
			mods.game_compatibility, users.username AS author_name,
			mods.thumbnail_path, mods.is_public`).
		Joins("JOIN users ON users.id = mods.author_id").
		Where("mods.author_id = ?", authorID).
		Order("mods.created_at DESC, mods.id ASC").
		Scan(&summaries).Error
	if err != nil {
		return nil, storageError("list mods by author", err)
	}
	return summaries, nil
}
