package store

import (
	"context"

	"github.com/me/turnwheel/pkg/model"
)

// Store defines the persistence layer for recorded replay sessions.
type Store interface {
	// Session CRUD
	CreateSession(ctx context.Context, sess *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	ListSessions(ctx context.Context, opts model.ListOptions) ([]*model.Session, int, error)
	UpdateSession(ctx context.Context, sess *model.Session) error
	DeleteSession(ctx context.Context, id string) error

	// Step operations
	AppendStep(ctx context.Context, step *model.StepRecord) error
	ListSteps(ctx context.Context, sessionID string) ([]*model.StepRecord, error)
	GetStep(ctx context.Context, sessionID string, index int) (*model.StepRecord, error)

	// LatestSnapshot returns the cycler snapshot recorded with the most
	// recent step of a session, or nil when the session has no steps.
	LatestSnapshot(ctx context.Context, sessionID string) ([]byte, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
