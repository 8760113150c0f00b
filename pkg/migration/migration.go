package migration

import "context"

// Immigration runs schema migrations.
// Up applies every pending migration, Down rolls back at most max applied migrations (max <= 0 means all).
type Immigration interface {
	Up(ctx context.Context) (applied int, err error)
	Down(ctx context.Context, max int) (applied int, err error)

	// Plan returns the ids of migrations that would run in the given direction.
	Plan(ctx context.Context, direction Direction) (ids []string, err error)
}

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Migrate is a single migration step.
type Migrate interface {
	// ID must be unique and sortable, the prefix must be number
	ID(ctx context.Context) string

	// Up return sql migration for sync database
	Up(ctx context.Context) (sql string, err error)

	// Down return sql migration for rollback database
	Down(ctx context.Context) (sql string, err error)
}

// Static is a Migrate with fixed sql.
type Static struct {
	Id      string
	UpSQL   string
	DownSQL string
}

var _ Migrate = (*Static)(nil)

func (s Static) ID(_ context.Context) string { return s.Id }

func (s Static) Up(_ context.Context) (string, error) { return s.UpSQL, nil }

func (s Static) Down(_ context.Context) (string, error) { return s.DownSQL, nil }
