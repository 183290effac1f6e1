package payment

import (
	"log/slog"

	"storefront/config"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"
	"storefront/internal/errors"

	"go.uber.org/fx"
)

type registry struct {
	gateways        map[entity.PaymentProvider]service.PaymentGateway
	defaultProvider entity.PaymentProvider
}

// RegistryParams holds dependencies for the gateway registry, injected by Fx
type RegistryParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewGatewayRegistry builds a gateway for every provider that has credentials.
func NewGatewayRegistry(params RegistryParams) (service.GatewayRegistry, error) {
	cfg := params.Config.Payment
	logger := params.Logger
	if cfg == nil {
		cfg = &config.PaymentConfig{}
	}

	gateways := make(map[entity.PaymentProvider]service.PaymentGateway)

	if cfg.Razorpay != nil && cfg.Razorpay.KeyID != "" {
		gateway, err := NewRazorpayGateway(cfg.Razorpay, logger)
		if err != nil {
			return nil, err
		}
		gateways[gateway.Provider()] = gateway
	}

	if cfg.Cashfree != nil && cfg.Cashfree.AppID != "" {
		gateway, err := NewCashfreeGateway(cfg.Cashfree, logger)
		if err != nil {
			return nil, err
		}
		gateways[gateway.Provider()] = gateway
	}

	defaultProvider := entity.PaymentProvider(cfg.DefaultProvider)
	if defaultProvider == "" {
		defaultProvider = entity.PaymentProviderRazorpay
	}
	if !defaultProvider.IsValid() {
		return nil, errors.Errorf("unknown default payment provider: %s", cfg.DefaultProvider)
	}

	if len(gateways) == 0 {
		logger.Warn("No payment gateway configured, checkout is disabled")
	} else if _, ok := gateways[defaultProvider]; !ok {
		logger.Warn("Default payment provider has no credentials",
			slog.String("provider", string(defaultProvider)),
		)
	}

	return NewRegistry(defaultProvider, gateways), nil
}

// NewRegistry wraps an explicit set of gateways.
func NewRegistry(defaultProvider entity.PaymentProvider, gateways map[entity.PaymentProvider]service.PaymentGateway) service.GatewayRegistry {
	return &registry{
		gateways:        gateways,
		defaultProvider: defaultProvider,
	}
}

func (r *registry) Get(provider entity.PaymentProvider) (service.PaymentGateway, error) {
	gateway, ok := r.gateways[provider]
	if !ok {
		return nil, errors.Wrapf(service.ErrUnknownProvider, "%s", provider)
	}

	return gateway, nil
}

func (r *registry) Default() entity.PaymentProvider {
	return r.defaultProvider
}

// Module provides the payment gateway FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewGatewayRegistry),
)
