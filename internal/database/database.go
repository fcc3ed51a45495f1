package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/booky/internal/entities"
)

// sampleBooks is the trending catalog shown on a fresh installation.
var sampleBooks = []entities.Book{
	{
		Title:       "The Seven Husbands of Evelyn Hugo",
		Author:      "Taylor Jenkins Reid",
		Rating:      4.8,
		ReviewCount: 124,
		CoverURL:    "https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=300&h=450&fit=crop&crop=top",
		Tag:         "trending",
	},
	{
		Title:       "Project Hail Mary",
		Author:      "Andy Weir",
		Rating:      4.6,
		ReviewCount: 89,
		CoverURL:    "https://images.unsplash.com/photo-1481627834876-b7833e8f5570?w=300&h=450&fit=crop&crop=center",
		Tag:         "new",
	},
	{
		Title:       "The Midnight Library",
		Author:      "Matt Haig",
		Rating:      4.4,
		ReviewCount: 256,
		CoverURL:    "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=300&h=450&fit=crop&crop=center",
		Tag:         "popular",
	},
	{
		Title:       "Klara and the Sun",
		Author:      "Kazuo Ishiguro",
		Rating:      4.2,
		ReviewCount: 167,
		CoverURL:    "https://images.unsplash.com/photo-1512820790803-83ca734da794?w=300&h=450&fit=crop&crop=center",
		Tag:         "acclaimed",
	},
	{
		Title:       "The Four Winds",
		Author:      "Kristin Hannah",
		Rating:      4.7,
		ReviewCount: 203,
		CoverURL:    "https://images.unsplash.com/photo-1592496431122-2349e0fbc666?w=300&h=450&fit=crop&crop=center",
		Tag:         "bestseller",
	},
	{
		Title:       "The Sanatorium",
		Author:      "Sarah Pearse",
		Rating:      4.1,
		ReviewCount: 98,
		CoverURL:    "https://images.unsplash.com/photo-1606787620819-8bdf0c44c293?w=300&h=450&fit=crop&crop=center",
		Tag:         "thriller",
	},
}

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	return open(dbPath, logger.Default.LogMode(logger.Info))
}

// NewQuietDatabase opens the database with SQL logging disabled.
// Used by tests and command line tools.
func NewQuietDatabase(dbPath string) (*Database, error) {
	return open(dbPath, logger.Default.LogMode(logger.Silent))
}

func open(dbPath string, gormLogger logger.Interface) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(sqliteDSN(dbPath)), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

// sqliteDSN turns on foreign keys, which SQLite ignores otherwise, and adds
// WAL and a busy timeout so that background audit writes wait for request
// writes instead of failing. A path that already carries parameters is used
// as is.
func sqliteDSN(dbPath string) string {
	if strings.Contains(dbPath, "?") {
		return dbPath
	}
	return dbPath + "?_foreign_keys=1&_journal=WAL&_busy_timeout=5000"
}

// Migrate creates or updates all application tables.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entities.User{},
		&entities.Profile{},
		&entities.Book{},
		&entities.UserBook{},
		&entities.Review{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping verifies the database connection is alive.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// SeedSampleBooks fills an empty catalog with the sample trending books.
// Returns the number of books created; a non-empty catalog is left untouched.
func (d *Database) SeedSampleBooks() (int, error) {
	var count int64
	if err := d.DB.Model(&entities.Book{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	books := make([]entities.Book, len(sampleBooks))
	copy(books, sampleBooks)
	if err := d.DB.Create(&books).Error; err != nil {
		return 0, fmt.Errorf("failed to seed sample books: %w", err)
	}

	for _, b := range books {
		log.Printf("Created book: %s by %s", b.Title, b.Author)
	}
	return len(books), nil
}
