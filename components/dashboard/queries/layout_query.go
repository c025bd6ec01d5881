package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/melodix/go-dashboard/components/dashboard"
)

type layoutService interface {
	ConfigureLayout(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.Layout, error)
}

// LayoutQuery resolves the per-viewer dashboard layout: areas, widget
// ordering and visibility with the viewer's saved overrides applied.
type LayoutQuery struct {
	service layoutService
}

// NewLayoutQuery builds the query.
func NewLayoutQuery(service layoutService) *LayoutQuery {
	return &LayoutQuery{service: service}
}

var _ gocommand.Querier[dashboard.ViewerContext, dashboard.Layout] = (*LayoutQuery)(nil)

// Query resolves the layout for the viewer.
func (q *LayoutQuery) Query(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.Layout, error) {
	if q.service == nil {
		return dashboard.Layout{}, errors.New("layout query requires service")
	}
	return q.service.ConfigureLayout(ctx, viewer)
}
