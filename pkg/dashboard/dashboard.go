package dashboard

import (
	"context"
	"errors"

	core "github.com/melodix/go-dashboard/components/dashboard"
	activitypkg "github.com/melodix/go-dashboard/pkg/activity"
)

// Re-exports so hosts embed the dashboard without importing the component
// package directly.
type (
	Service        = core.Service
	Options        = core.Options
	Session        = core.Session
	SessionOptions = core.SessionOptions
	Controller     = core.Controller
	ViewerContext  = core.ViewerContext
)

// NewService proxies to the component constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// NewSession proxies to the component constructor.
func NewSession(opts SessionOptions) *Session {
	return core.NewSession(opts)
}

// NavBuilder ensures dashboard entries exist within the host navigation.
type NavBuilder interface {
	EnsureNavItem(ctx context.Context, navCode string, item NavItem) error
}

// NavItem captures dashboard link metadata for the host menu.
type NavItem struct {
	Label    string
	Route    string
	Icon     string
	Position int
}

// HostConfig wires the dashboard service + feature flags into a host app.
type HostConfig struct {
	EnableDashboard bool
	NavCode         string
	NavBuilder      NavBuilder
	Service         *Service
	DefaultNavItem  NavItem
	ActivityHooks   activitypkg.Hooks
	ActivityConfig  activitypkg.Config
}

// Host mounts the dashboard inside a larger Melodix application: it seeds
// the navigation entry and hands the configured service to the embedding
// code.
type Host struct {
	cfg HostConfig
}

// NewHost creates a Host that can seed dashboard navigation.
func NewHost(cfg HostConfig) (*Host, error) {
	if cfg.EnableDashboard && cfg.Service == nil {
		return nil, errors.New("dashboard: service is required when enabled")
	}
	if cfg.NavCode == "" {
		cfg.NavCode = "melodix.nav.main"
	}
	if cfg.DefaultNavItem.Label == "" {
		cfg.DefaultNavItem.Label = "Mi panel"
	}
	if cfg.DefaultNavItem.Route == "" {
		cfg.DefaultNavItem.Route = "melodix.dashboard"
	}
	if cfg.DefaultNavItem.Icon == "" {
		cfg.DefaultNavItem.Icon = "chart-bar"
	}
	return &Host{cfg: cfg}, nil
}

// Dashboard exposes the configured dashboard service when enabled.
func (h *Host) Dashboard() *Service {
	if !h.cfg.EnableDashboard {
		return nil
	}
	return h.cfg.Service
}

// Activity returns the hooks and emitter config the host should pass into
// the component options.
func (h *Host) Activity() (activitypkg.Hooks, activitypkg.Config) {
	return h.cfg.ActivityHooks, h.cfg.ActivityConfig
}

// Bootstrap seeds the navigation entry when dashboard support is enabled.
func (h *Host) Bootstrap(ctx context.Context) error {
	if !h.cfg.EnableDashboard || h.cfg.NavBuilder == nil {
		return nil
	}
	return h.cfg.NavBuilder.EnsureNavItem(ctx, h.cfg.NavCode, h.cfg.DefaultNavItem)
}
