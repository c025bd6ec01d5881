package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/melodix/go-dashboard/components/dashboard"
)

// WidgetAreaInput identifies an area request for a viewer.
type WidgetAreaInput struct {
	Viewer   dashboard.ViewerContext
	AreaCode string
}

type areaService interface {
	ResolveArea(ctx context.Context, viewer dashboard.ViewerContext, areaCode string) (dashboard.ResolvedArea, error)
}

// WidgetAreaQuery fetches the widgets of one area, filtered to what the
// viewer may see, with provider data already attached.
type WidgetAreaQuery struct {
	service areaService
}

// NewWidgetAreaQuery builds the query.
func NewWidgetAreaQuery(service areaService) *WidgetAreaQuery {
	return &WidgetAreaQuery{service: service}
}

var _ gocommand.Querier[WidgetAreaInput, dashboard.ResolvedArea] = (*WidgetAreaQuery)(nil)

// Query resolves an individual area for the viewer.
func (q *WidgetAreaQuery) Query(ctx context.Context, input WidgetAreaInput) (dashboard.ResolvedArea, error) {
	if q.service == nil {
		return dashboard.ResolvedArea{}, errors.New("widget area query requires service")
	}
	return q.service.ResolveArea(ctx, input.Viewer, input.AreaCode)
}
