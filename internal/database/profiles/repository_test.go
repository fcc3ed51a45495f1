package profiles

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/booky/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "profiles.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Profile{}, &entities.Book{}, &entities.UserBook{}, &entities.Review{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db, NewRepository(db)
}

func createTestProfile(t *testing.T, db *gorm.DB, id, username string) {
	require.NoError(t, db.Create(&entities.Profile{ID: id, Username: username, Bio: username + " reads"}).Error)
}

func TestRepository_ByIDs(t *testing.T) {
	db, repo := setupTestDB(t)
	createTestProfile(t, db, "u1", "alice")
	createTestProfile(t, db, "u2", "bob")
	createTestProfile(t, db, "u3", "carol")

	t.Run("returns matching profiles only", func(t *testing.T) {
		profiles, err := repo.ByIDs(context.Background(), []string{"u1", "u3", "ghost"})
		require.NoError(t, err)
		names := []string{}
		for _, p := range profiles {
			names = append(names, p.Username)
		}
		assert.ElementsMatch(t, []string{"alice", "carol"}, names)
	})

	t.Run("empty id set is an empty result", func(t *testing.T) {
		profiles, err := repo.ByIDs(context.Background(), nil)
		require.NoError(t, err)
		assert.NotNil(t, profiles)
		assert.Empty(t, profiles)
	})
}

func TestRepository_ReaderStats(t *testing.T) {
	db, repo := setupTestDB(t)
	ctx := context.Background()
	createTestProfile(t, db, "u1", "alice")
	createTestProfile(t, db, "u2", "bob")
	createTestProfile(t, db, "u3", "carol")

	books := make([]entities.Book, 3)
	for i := range books {
		books[i] = entities.Book{Title: "Book", Author: "Author"}
		require.NoError(t, db.Create(&books[i]).Error)
	}

	// bob: two books read, one review. alice: one read, one "reading" (not counted).
	require.NoError(t, db.Create(&entities.UserBook{UserID: "u2", BookID: books[0].ID, Status: entities.StatusRead}).Error)
	require.NoError(t, db.Create(&entities.UserBook{UserID: "u2", BookID: books[1].ID, Status: entities.StatusRead}).Error)
	require.NoError(t, db.Create(&entities.Review{UserID: "u2", BookID: books[0].ID, Rating: 5}).Error)
	require.NoError(t, db.Create(&entities.UserBook{UserID: "u1", BookID: books[0].ID, Status: entities.StatusRead}).Error)
	require.NoError(t, db.Create(&entities.UserBook{UserID: "u1", BookID: books[2].ID, Status: entities.StatusReading}).Error)

	stats, err := repo.ReaderStats(ctx, 10)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, "bob", stats[0].Username)
	assert.Equal(t, 2, stats[0].BooksReadCount)
	assert.Equal(t, 1, stats[0].ReviewsCount)

	assert.Equal(t, "alice", stats[1].Username)
	assert.Equal(t, 1, stats[1].BooksReadCount)
	assert.Equal(t, 0, stats[1].ReviewsCount)

	assert.Equal(t, "carol", stats[2].Username)
	assert.Zero(t, stats[2].BooksReadCount)
	assert.Equal(t, "u3", stats[2].ID)

	limited, err := repo.ReaderStats(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
