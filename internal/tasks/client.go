package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// ErrClientClosed is returned when a task is enqueued after Close.
var ErrClientClosed = errors.New("task queue is closed")

const (
	clientIdle int32 = iota
	clientRunning
	clientClosed
)

// Client runs Booky's background jobs on a backlite queue kept in its own
// SQLite file, so job bookkeeping never contends with reader writes.
type Client struct {
	queue   *backlite.Client
	db      *sql.DB
	workers int
	state   atomic.Int32
}

// tasksDBPath places the queue next to the main database:
// data/booky.db becomes data/booky-tasks.db.
func tasksDBPath(mainDBPath string) string {
	ext := filepath.Ext(mainDBPath)
	return strings.TrimSuffix(mainDBPath, ext) + "-tasks" + ext
}

func openTasksDB(path string, workers int) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open tasks database %s: %w", path, err)
	}
	// Each worker holds a connection while it runs, plus a few for enqueues.
	db.SetMaxOpenConns(workers + 5)
	db.SetMaxIdleConns(workers + 2)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// NewClient opens the queue database beside mainDBPath and installs the
// backlite schema.
func NewClient(mainDBPath string, cfg Config) (*Client, error) {
	db, err := openTasksDB(tasksDBPath(mainDBPath), cfg.Workers)
	if err != nil {
		return nil, err
	}

	queue, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          taskLogger{},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create task queue: %w", err)
	}

	if err := queue.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("install task queue schema: %w", err)
	}

	return &Client{queue: queue, db: db, workers: cfg.Workers}, nil
}

// Register adds queues. Call it before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.queue.Register(q)
	}
}

// Start launches the workers. Only the first call has an effect.
func (c *Client) Start(ctx context.Context) {
	if !c.state.CompareAndSwap(clientIdle, clientRunning) {
		return
	}
	log.Printf("[TASK] Queue started with %d workers", c.workers)
	c.queue.Start(ctx)
}

// Stop waits for running tasks until ctx expires. It reports whether every
// worker finished in time, and is true when the queue never started.
func (c *Client) Stop(ctx context.Context) bool {
	if c.state.Load() != clientRunning {
		return true
	}

	log.Println("[TASK] Stopping queue...")
	if !c.queue.Stop(ctx) {
		log.Println("[TASK] Queue stopped before all tasks finished")
		return false
	}
	log.Println("[TASK] Queue stopped")
	return true
}

// Close releases the queue database. Call it after Stop.
func (c *Client) Close() error {
	if c.state.Swap(clientClosed) == clientClosed {
		return nil
	}
	return c.db.Close()
}

func (c *Client) save(ctx context.Context, task backlite.Task) ([]string, error) {
	if c.state.Load() == clientClosed {
		return nil, ErrClientClosed
	}
	return c.queue.Add(task).Ctx(ctx).Save()
}

// EnqueueRefreshBookStats schedules a rating refresh for one book.
func (c *Client) EnqueueRefreshBookStats(ctx context.Context, bookID string) error {
	if _, err := c.save(ctx, RefreshBookStatsTask{BookID: bookID}); err != nil {
		return fmt.Errorf("enqueue stats refresh for book %s: %w", bookID, err)
	}
	return nil
}

// EnqueueAuditCleanup schedules removal of audit events older than retentionDays.
func (c *Client) EnqueueAuditCleanup(ctx context.Context, retentionDays int) (string, error) {
	ids, err := c.save(ctx, CleanupAuditEventsTask{RetentionDays: retentionDays})
	if err != nil {
		return "", fmt.Errorf("enqueue audit cleanup: %w", err)
	}
	return ids[0], nil
}

// Status returns the status of a task by ID.
func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.queue.Status(ctx, taskID)
}

// taskLogger prints backlite's messages through the standard logger.
// backlite passes params as alternating keys and values.
type taskLogger struct{}

func (taskLogger) Info(message string, params ...any) {
	log.Print("[TASK] " + withParams(message, params))
}

func (taskLogger) Error(message string, params ...any) {
	log.Print("[TASK ERROR] " + withParams(message, params))
}

func withParams(message string, params []any) string {
	var b strings.Builder
	b.WriteString(message)
	for i := 0; i < len(params); i += 2 {
		b.WriteByte(' ')
		if i+1 == len(params) {
			fmt.Fprint(&b, params[i])
			break
		}
		fmt.Fprintf(&b, "%v=%v", params[i], params[i+1])
	}
	return b.String()
}
