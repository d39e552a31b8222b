package mindful

import (
	"context"
	"fmt"

	"github.com/mindfulplus/mindful/internal/config"
	"github.com/mindfulplus/mindful/internal/docstore"
	"github.com/mindfulplus/mindful/internal/identity"
	"github.com/mindfulplus/mindful/internal/logging"
	"github.com/mindfulplus/mindful/internal/timex"
)

// NewFromConfig wires the shared document store, the identity client and
// the service-account signer described by cfg.
func NewFromConfig(ctx context.Context, cfg *config.Config, log logging.Logger) (*Service, error) {
	loc, err := timex.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	signer, err := identity.NewSigner(cfg.ServiceAccount)
	if err != nil {
		return nil, fmt.Errorf("admin credentials: %w", err)
	}
	store, err := docstore.Shared(ctx, cfg.DocstoreDSN)
	if err != nil {
		return nil, fmt.Errorf("document store: %w", err)
	}
	auth := identity.NewClient(cfg.WebAPIKey, identity.WithBaseURL(cfg.IdentityBaseURL))
	return New(store, auth,
		WithSigner(signer),
		WithLocation(loc),
		WithLogger(log),
	), nil
}
