package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/melodix/go-dashboard/components/dashboard"
)

// SnapshotInput controls how the session snapshot is produced. Reload
// forces a full provider round-trip; otherwise the cached state is
// returned as-is.
type SnapshotInput struct {
	Reload bool `json:"reload"`
}

type snapshotSession interface {
	Load(ctx context.Context) (dashboard.Snapshot, error)
	Snapshot() dashboard.Snapshot
}

// SnapshotQuery reads the full render state of a session.
type SnapshotQuery struct {
	session snapshotSession
}

// NewSnapshotQuery builds the query.
func NewSnapshotQuery(session snapshotSession) *SnapshotQuery {
	return &SnapshotQuery{session: session}
}

var _ gocommand.Querier[SnapshotInput, dashboard.Snapshot] = (*SnapshotQuery)(nil)

// Query returns the session snapshot, loading it first when asked.
func (q *SnapshotQuery) Query(ctx context.Context, input SnapshotInput) (dashboard.Snapshot, error) {
	if q.session == nil {
		return dashboard.Snapshot{}, errors.New("snapshot query requires session")
	}
	if input.Reload {
		return q.session.Load(ctx)
	}
	return q.session.Snapshot(), nil
}
