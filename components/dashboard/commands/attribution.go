package commands

import (
	"context"

	dashboard "github.com/melodix/go-dashboard/components/dashboard"
)

// stampAttribution threads actor, user and tenant identifiers onto the
// context so the service's activity emitter can credit the change.
func stampAttribution(ctx context.Context, actorID, userID, tenantID string) context.Context {
	return dashboard.ContextWithActivity(ctx, dashboard.ActivityContext{
		ActorID:  actorID,
		UserID:   userID,
		TenantID: tenantID,
	})
}
