// Package history keeps past optimization results so they can be listed and replayed.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/resume-tailor/internal/optimization"
)

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	// DefaultListLimit applies when List is called with a non-positive limit.
	DefaultListLimit = 20
)

var (
	ErrNotFound  = errors.New("history record not found")
	ErrAmbiguous = errors.New("history id prefix matches several records")
)

// Record is one stored optimization.
type Record struct {
	ID        string              `json:"id"`
	CreatedAt time.Time           `json:"createdAt"`
	JobURL    string              `json:"jobUrl,omitempty"`
	JobTitle  string              `json:"jobTitle,omitempty"`
	Company   string              `json:"company,omitempty"`
	Model     string              `json:"model,omitempty"`
	Strategy  string              `json:"strategy,omitempty"`
	Result    optimization.Result `json:"result"`
	// Raw is the unprocessed model answer.
	Raw string `json:"raw,omitempty"`
}

// NewRecord stamps a result with a fresh id and the current time.
func NewRecord(result *optimization.Result) *Record {
	r := &Record{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if result != nil {
		r.Result = *result
	}
	return r
}

// Store persists records. Get accepts a full id or a unique prefix of one.
type Store interface {
	Save(ctx context.Context, record *Record) error
	List(ctx context.Context, limit int) ([]*Record, error)
	Get(ctx context.Context, id string) (*Record, error)
	Close() error
}

// Open returns the store for driver, located at dsn.
func Open(driver, dsn string) (Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("history path is required")
	}

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverFile, "":
		return NewFileStore(dsn), nil
	case DriverSQLite:
		return OpenSQLite(dsn)
	default:
		return nil, fmt.Errorf("unsupported history driver: %s", driver)
	}
}

func validate(record *Record) error {
	if record == nil {
		return errors.New("record is required")
	}
	if _, err := uuid.Parse(record.ID); err != nil {
		return fmt.Errorf("record id %q: %w", record.ID, err)
	}
	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
