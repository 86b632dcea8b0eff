package payment

import "log/slog"

// NewProvider selects the active provider from configuration. The choice is
// a single flag so environments flip between mock and live gateway without
// code changes. Construct once in main and inject; handlers never build
// their own provider.
func NewProvider(cfg Config, logger *slog.Logger) (Provider, error) {
	if cfg.MockMode {
		return NewMockProvider(cfg, logger), nil
	}
	return NewEZPayProvider(cfg, logger)
}
