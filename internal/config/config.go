// Package config reads environment configuration once, in main. Everything
// downstream receives explicit structs and never touches the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/govtech-bb/formflow/pkg/payment"
)

// Server is the full server configuration.
type Server struct {
	Addr          string
	SchemaDir     string
	SubmissionURL string
	Payment       payment.Config
}

// FromEnv builds a Server config from environment variables so main stays
// lean. Missing optional values get development defaults; the payment
// service table is validated lazily by the provider.
func FromEnv() (Server, error) {
	addr := os.Getenv("FORMFLOW_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	schemaDir := os.Getenv("FORMFLOW_SCHEMA_DIR")
	if schemaDir == "" {
		schemaDir = "schemas"
	}

	baseURL := os.Getenv("FORMFLOW_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	services, err := parseServices(os.Getenv("FORMFLOW_PAYMENT_SERVICES"))
	if err != nil {
		return Server{}, err
	}

	return Server{
		Addr:          addr,
		SchemaDir:     schemaDir,
		SubmissionURL: os.Getenv("FORMFLOW_SUBMISSION_URL"),
		Payment: payment.Config{
			MockMode:           os.Getenv("FORMFLOW_PAYMENT_MOCK") != "false",
			GatewayBaseURL:     os.Getenv("EZPAY_BASE_URL"),
			GatewayAPIKey:      os.Getenv("EZPAY_API_KEY"),
			BaseURL:            baseURL,
			AllowedReturnHosts: splitHosts(os.Getenv("FORMFLOW_ALLOWED_RETURN_HOSTS")),
			Services:           services,
		},
	}, nil
}

// parseServices decodes the per-service payment table, a JSON object keyed
// by service type:
//
//	{"birth-certificate": {"code": "BC-001", "amount": 50, "description": "..."}}
func parseServices(raw string) (map[string]payment.ServiceConfig, error) {
	if raw == "" {
		return nil, nil
	}

	var entries map[string]struct {
		Code                 string  `json:"code"`
		Amount               float64 `json:"amount"`
		Description          string  `json:"description"`
		RequiresVerification bool    `json:"requiresVerification"`
	}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("config: parse FORMFLOW_PAYMENT_SERVICES: %w", err)
	}

	services := make(map[string]payment.ServiceConfig, len(entries))
	for key, e := range entries {
		services[key] = payment.ServiceConfig{
			Code:                 e.Code,
			Amount:               e.Amount,
			Description:          e.Description,
			RequiresVerification: e.RequiresVerification,
		}
	}
	return services, nil
}

func splitHosts(raw string) []string {
	if raw == "" {
		return nil
	}
	var hosts []string
	for _, h := range strings.Split(raw, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}
