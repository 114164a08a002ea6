package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// Provider answers whether the current credentials carry elevated access and
// triggers the interactive key-selection flow when they do not. The interface
// mirrors the host-environment contract: completion of a selection is not
// separately confirmed, callers treat a returned nil as "the interaction ran".
type Provider interface {
	HasElevatedAccess(ctx context.Context) (bool, error)
	RequestElevatedAccess(ctx context.Context) error
}

// RequestFunc performs the interactive authorization-selection. studio-web
// pushes a select-key event to the browser; studio-cli opens a dialog.
type RequestFunc func(ctx context.Context) error

// modelGetter is the slice of the Gemini client used to probe entitlements.
// *genai.Models satisfies it.
type modelGetter interface {
	Get(ctx context.Context, model string, config *genai.GetModelConfig) (*genai.Model, error)
}

// ProbeProvider determines elevated access by fetching metadata for a model
// that is only visible to billing-enabled keys. The probe is cheap: no
// content generation happens, only a model lookup.
type ProbeProvider struct {
	models     modelGetter
	probeModel string
	request    RequestFunc
}

// NewProbeProvider builds a ProbeProvider. probeModel should be an
// elevated-tier model ID (the high-quality image model works well).
// request may be nil when no interactive surface exists; requesting access is
// then a logged no-op.
func NewProbeProvider(client *genai.Client, probeModel string, request RequestFunc) *ProbeProvider {
	return &ProbeProvider{
		models:     client.Models,
		probeModel: probeModel,
		request:    request,
	}
}

// HasElevatedAccess reports whether the configured key can reach the probe
// model. Entitlement refusals map to false without error; anything else
// (network trouble, server errors) is surfaced so callers can keep the
// previous flag value.
func (p *ProbeProvider) HasElevatedAccess(ctx context.Context) (bool, error) {
	_, err := p.models.Get(ctx, p.probeModel, nil)
	if err == nil {
		log.Debug().Str("model", p.probeModel).Msg("Elevated access probe succeeded")
		return true, nil
	}

	if isEntitlementRefusal(err) {
		log.Debug().Err(err).Str("model", p.probeModel).Msg("Elevated access probe refused")
		return false, nil
	}

	log.Warn().Err(err).Msg("Elevated access probe failed")
	return false, err
}

// RequestElevatedAccess runs the injected selection interaction.
func (p *ProbeProvider) RequestElevatedAccess(ctx context.Context) error {
	if p.request == nil {
		log.Warn().Msg("No authorization-selection surface configured")
		return nil
	}
	return p.request(ctx)
}

// isEntitlementRefusal reports whether err means the key lacks access to the
// requested model, as opposed to a transient or configuration problem.
func isEntitlementRefusal(err error) bool {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401, 403, 404:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "requested entity was not found") ||
		strings.Contains(msg, "permission denied")
}
