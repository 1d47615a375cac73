package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mindmate/mindmate-backend/internal/llm"
	"github.com/mindmate/mindmate-backend/internal/repo"
)

// newServiceDB opens a throwaway SQLite database with the schema migrated and
// the persona catalog seeded.
func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("svc_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if err := repo.SeedPersonas(db); err != nil {
		t.Fatalf("seed personas: %v", err)
	}
	return db
}

// completerCall records one upstream invocation for assertions.
type completerCall struct {
	systemPrompt string
	turns        []llm.Turn
	maxTokens    int
	temperature  float64
}

// fakeCompleter is a scripted ChatCompleter.
type fakeCompleter struct {
	reply string
	err   error
	calls []completerCall
}

func (f *fakeCompleter) Complete(_ context.Context, systemPrompt string, turns []llm.Turn, maxTokens int, temperature float64) (string, error) {
	f.calls = append(f.calls, completerCall{
		systemPrompt: systemPrompt,
		turns:        append([]llm.Turn(nil), turns...),
		maxTokens:    maxTokens,
		temperature:  temperature,
	})
	return f.reply, f.err
}
