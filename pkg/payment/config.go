package payment

import "fmt"

// ServiceConfig is the server-side payment definition for one service type.
// Amount is authoritative here; client requests never carry a price.
type ServiceConfig struct {
	Code                 string
	Amount               float64
	Description          string
	RequiresVerification bool
}

// Config selects and configures the active provider.
type Config struct {
	MockMode           bool
	GatewayBaseURL     string
	GatewayAPIKey      string
	BaseURL            string
	AllowedReturnHosts []string
	Services           map[string]ServiceConfig
}

// Service looks up the configuration for a service type. A missing entry is
// a configuration error, reported loudly so misconfigured deployments fail
// before any money moves.
func (c Config) Service(serviceType string) (ServiceConfig, error) {
	svc, ok := c.Services[serviceType]
	if !ok {
		return ServiceConfig{}, fmt.Errorf("payment: no configuration for service %q", serviceType)
	}
	return svc, nil
}
