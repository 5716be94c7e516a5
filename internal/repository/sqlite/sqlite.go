package sqlite

import (
	"time"

	"log/slog"

	"github.com/ahmed-hamed0/sani3y.com/internal/db"
	"github.com/ahmed-hamed0/sani3y.com/pkg/repository"
)

// Store implements the repository interfaces using the internal DB wrapper.
type Store struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure Store implements the public interfaces.
var _ repository.UserRepo = (*Store)(nil)
var _ repository.ProfileRepo = (*Store)(nil)
var _ repository.CraftsmanRepo = (*Store)(nil)
var _ repository.JobRepo = (*Store)(nil)
var _ repository.ApplicationRepo = (*Store)(nil)
var _ repository.ReviewRepo = (*Store)(nil)
var _ repository.UsageRepo = (*Store)(nil)
var _ repository.TaskRepo = (*Store)(nil)

func New(conn *db.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{conn: conn, logger: logger}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}
