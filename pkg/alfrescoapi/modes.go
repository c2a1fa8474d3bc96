package alfrescoapi

import (
	"github.com/fivetwenty-io/alfresco-client/internal/auth"
	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
)

// sessionMode is the strategy set of a configuration. It is chosen once per
// Configure and every operation switches on its concrete type.
type sessionMode interface {
	name() string
}

// ticketStrategies is shared by the BASIC modes.
type ticketStrategies struct {
	ecm *auth.EcmAuth
	bpm *auth.BpmAuth
}

type (
	ecmMode         struct{ ticketStrategies }
	bpmMode         struct{ ticketStrategies }
	dualMode        struct{ ticketStrategies }
	unsupportedMode struct{ ticketStrategies }
)

type oauthMode struct {
	oauth    *auth.OAuth2Auth
	provider alfresco.Provider
}

func (*ecmMode) name() string         { return "ecm" }
func (*bpmMode) name() string         { return "bpm" }
func (*dualMode) name() string        { return "all" }
func (*unsupportedMode) name() string { return "unsupported" }
func (*oauthMode) name() string       { return "oauth" }

// selectMode builds the strategies config asks for.
func selectMode(config *alfresco.Config, opts auth.Options) (sessionMode, error) {
	if config.IsOAuth() {
		oauth, err := auth.NewOAuth2Auth(config, opts)
		if err != nil {
			return nil, err
		}

		return &oauthMode{oauth: oauth, provider: config.Provider}, nil
	}

	strategies := ticketStrategies{
		ecm: auth.NewEcmAuth(config, opts),
		bpm: auth.NewBpmAuth(config, opts),
	}

	switch {
	case config.Provider.Is(alfresco.ProviderAll):
		return &dualMode{strategies}, nil
	case config.Provider.Is(alfresco.ProviderECM):
		return &ecmMode{strategies}, nil
	case config.Provider.Is(alfresco.ProviderBPM):
		return &bpmMode{strategies}, nil
	default:
		return &unsupportedMode{strategies}, nil
	}
}

// tickets returns the ticket strategies of a BASIC mode.
func tickets(mode sessionMode) (*ticketStrategies, bool) {
	switch m := mode.(type) {
	case *ecmMode:
		return &m.ticketStrategies, true
	case *bpmMode:
		return &m.ticketStrategies, true
	case *dualMode:
		return &m.ticketStrategies, true
	case *unsupportedMode:
		return &m.ticketStrategies, true
	default:
		return nil, false
	}
}
