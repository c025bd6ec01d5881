package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/melodix/go-dashboard/components/dashboard"
)

// RecommendationsViewInput is empty; the query reads whatever mood is
// active on the session.
type RecommendationsViewInput struct{}

type recommendationsState interface {
	Snapshot() dashboard.Snapshot
}

// RecommendationsViewQuery reads the recommendations region on its own so
// the widget can repaint without re-resolving the rest of the page.
type RecommendationsViewQuery struct {
	session recommendationsState
}

// NewRecommendationsViewQuery builds the query.
func NewRecommendationsViewQuery(session recommendationsState) *RecommendationsViewQuery {
	return &RecommendationsViewQuery{session: session}
}

var _ gocommand.Querier[RecommendationsViewInput, dashboard.RecommendationsRegion] = (*RecommendationsViewQuery)(nil)

// Query returns the recommendations region state.
func (q *RecommendationsViewQuery) Query(_ context.Context, _ RecommendationsViewInput) (dashboard.RecommendationsRegion, error) {
	if q.session == nil {
		return dashboard.RecommendationsRegion{}, errors.New("recommendations query requires session")
	}
	return q.session.Snapshot().Recommendations, nil
}
