package scratchpad

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
	gormSqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"github.com/Laisky/scratchpad-mcp/library/log"
)

// testClock is a manually advanced clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

// Now returns the current fake time.
func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the fake time forward (or backward for negative d).
func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fieldsSegmenter splits on whitespace and on a fixed dictionary of words.
type fieldsSegmenter struct {
	words []string
}

// Cut returns dictionary words found in text in order, or the whitespace fields.
func (s fieldsSegmenter) Cut(text string) []string {
	var out []string
	for _, field := range strings.Fields(text) {
		rest := field
		for rest != "" {
			matched := false
			for _, word := range s.words {
				if strings.HasPrefix(rest, word) {
					out = append(out, word)
					rest = rest[len(word):]
					matched = true
					break
				}
			}
			if !matched {
				_, size := utf8.DecodeRuneInString(rest)
				out = append(out, rest[:size])
				rest = rest[size:]
			}
		}
	}
	return out
}

// newTestDB creates an in-memory sqlite database on the pure-Go driver.
func newTestDB(t *testing.T) *gorm.DB {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s-%d?mode=memory&cache=shared", name, time.Now().UTC().UnixNano())
	db, err := gorm.Open(gormSqlite.New(gormSqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// testSettings returns defaults with segmentation disabled.
func testSettings() Settings {
	return Settings{}.withDefaults()
}

// newTestService builds a service over a fresh database.
func newTestService(t *testing.T, settings Settings, clock *testClock, segmenter Segmenter) *Service {
	return newTestServiceWithDB(t, newTestDB(t), settings, clock, segmenter)
}

func newTestServiceWithDB(t *testing.T, db *gorm.DB, settings Settings, clock *testClock, segmenter Segmenter) *Service {
	if clock == nil {
		clock = newTestClock()
	}
	svc, err := NewService(context.Background(), db, settings, segmenter, log.Logger.Named("test"), clock.Now)
	require.NoError(t, err)
	return svc
}

// requireIndex skips tests that need FTS5 when the driver lacks it.
func requireIndex(t *testing.T, svc *Service) {
	t.Helper()
	if !svc.Index().Available() {
		t.Skip("sqlite build lacks fts5")
	}
}

func strPtr(v string) *string {
	return &v
}
