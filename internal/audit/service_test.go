package audit

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/booky/internal/auth"
	auditRepo "github.com/mrlokans/booky/internal/database/audit"
	"github.com/mrlokans/booky/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	path := filepath.Join(t.TempDir(), "audit.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	repo := auditRepo.NewRepository(db)
	svc := NewService(repo)

	return svc, db
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t)

	event := &entities.AuditEvent{
		UserID:      "user-1",
		EventType:   entities.AuditEventAuth,
		Action:      "sign_in",
		Description: "Signed in",
		Status:      entities.AuditStatusSuccess,
	}

	err := svc.Log(context.Background(), event)
	require.NoError(t, err)

	var saved entities.AuditEvent
	err = db.First(&saved, event.ID).Error
	require.NoError(t, err)
	assert.Equal(t, "sign_in", saved.Action)
}

func TestService_LogBookStatus(t *testing.T) {
	svc, db := setupTestService(t)

	t.Run("successful status change", func(t *testing.T) {
		svc.LogBookStatus("user-1", "book-1", entities.StatusReading, nil)
		svc.Wait()

		var event entities.AuditEvent
		err := db.Where("action = ? AND entity_id = ?", "add_to_books", "book-1").First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.AuditStatusSuccess, event.Status)
		assert.Equal(t, "user-1", event.UserID)
		assert.Contains(t, event.Description, "reading")
	})

	t.Run("failed status change", func(t *testing.T) {
		svc.LogBookStatus("user-1", "book-2", entities.StatusRead, errors.New("database is locked"))
		svc.Wait()

		var event entities.AuditEvent
		err := db.Where("entity_id = ?", "book-2").First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.AuditStatusFailed, event.Status)
		assert.Contains(t, event.ErrorMsg, "database is locked")
	})
}

func TestService_LogReview(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogReview("user-1", "book-1", 4, nil)
	svc.Wait()

	var event entities.AuditEvent
	require.NoError(t, db.Where("event_type = ?", entities.AuditEventReview).First(&event).Error)
	assert.Equal(t, "add_review", event.Action)
	assert.Equal(t, "Rated 4/5", event.Description)
}

func TestService_LogAuth(t *testing.T) {
	svc, _ := setupTestService(t)

	svc.LogAuth("user-1", "sign_in", nil)
	svc.LogAuth("", "sign_in", errors.New("invalid credentials"))
	svc.Wait()

	events, total, err := svc.GetEvents(context.Background(), "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	statuses := map[entities.AuditStatus]int{}
	for _, e := range events {
		statuses[e.Status]++
	}
	assert.Equal(t, 1, statuses[entities.AuditStatusSuccess])
	assert.Equal(t, 1, statuses[entities.AuditStatusFailed])
}

func TestService_RecordSession(t *testing.T) {
	svc, _ := setupTestService(t)

	svc.RecordSession(auth.SessionEvent{Kind: auth.SessionSignedIn, Session: auth.Session{UserID: "user-1"}})
	svc.RecordSession(auth.SessionEvent{Kind: auth.SessionSignedOut, Session: auth.Session{UserID: "user-1"}})
	svc.Wait()

	events, _, err := svc.repo.GetEvents(context.Background(), "user-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)

	actions := map[string]bool{}
	for _, e := range events {
		assert.Equal(t, "user-1", e.UserID)
		assert.Equal(t, entities.AuditEventAuth, e.EventType)
		actions[e.Action] = true
	}
	assert.True(t, actions["sign_in"])
	assert.True(t, actions["sign_out"])
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Log(ctx, &entities.AuditEvent{
		EventType: entities.AuditEventAuth,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}))
	require.NoError(t, svc.Log(ctx, &entities.AuditEvent{EventType: entities.AuditEventAuth}))

	deleted, err := svc.DeleteOldEvents(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	long := strings.Repeat("x", 20)
	got := truncate(long, 10)
	assert.Len(t, got, 10)
	assert.True(t, strings.HasSuffix(got, "..."))
}
