package plugins

import (
	"context"

	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

// Plugin adapts one third-party data source into the assessment
// pipeline. Execute receives the flat user-profile payload and returns
// an opaque structured result persisted verbatim as ThirdPartyData.
type Plugin interface {
	Name() string
	Description() string
	Execute(ctx context.Context, userData map[string]any) (map[string]any, error)
	ValidateResponse(response map[string]any) bool
}

// Factory builds a plugin instance at registry construction time.
type Factory func(log *logger.Logger) (Plugin, error)

// builtins is the full set of linkable plugins. The deployed subset is
// chosen by name in configuration; there is no runtime discovery.
var builtins = map[string]Factory{
	"sift": NewSiftPlugin,
}
