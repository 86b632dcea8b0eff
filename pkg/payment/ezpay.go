package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/govtech-bb/formflow/internal/ezpay"
)

// EZPayProvider adapts the EZPay+ wire client to the generic provider
// contract. Cart amounts always come from server-side service configuration.
type EZPayProvider struct {
	cfg    Config
	client *ezpay.Client
	logger *slog.Logger
}

// NewEZPayProvider validates gateway credentials up front so a
// misconfigured deployment fails at startup, not mid-payment.
func NewEZPayProvider(cfg Config, logger *slog.Logger) (*EZPayProvider, error) {
	if cfg.GatewayBaseURL == "" {
		return nil, errors.New("payment: gateway base URL is not configured")
	}
	if cfg.GatewayAPIKey == "" {
		return nil, errors.New("payment: gateway API key is not configured")
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := ezpay.New(cfg.GatewayBaseURL, cfg.GatewayAPIKey)
	if err != nil {
		return nil, fmt.Errorf("payment: gateway client: %w", err)
	}
	return &EZPayProvider{cfg: cfg, client: client, logger: logger}, nil
}

func (p *EZPayProvider) Name() string { return "EZPay+" }

func (p *EZPayProvider) Initiate(ctx context.Context, req InitiationRequest) (InitiationResult, error) {
	svc, err := p.cfg.Service(req.ServiceType)
	if err != nil {
		return InitiationResult{}, err
	}

	resp, err := p.client.CreateCart(ctx, ezpay.CartRequest{
		Items: []ezpay.CartItem{{
			Code:      svc.Code,
			Amount:    svc.Amount,
			Details:   svc.Description,
			Reference: req.ReferenceID,
		}},
		CustomerEmail:   req.Email,
		CustomerName:    req.CustomerName,
		ReferenceNumber: req.ReferenceID,
	})
	if err != nil {
		return InitiationResult{}, fmt.Errorf("payment: initiate: %w", err)
	}

	p.logger.Info("payment initiated",
		slog.String("service_type", req.ServiceType),
		slog.String("reference_id", req.ReferenceID))

	return InitiationResult{
		RedirectURL: p.client.PaymentPageURL(resp.Token),
		Token:       resp.Token,
		ReferenceID: req.ReferenceID,
	}, nil
}

func (p *EZPayProvider) Verify(ctx context.Context, req VerificationRequest) (VerificationResult, error) {
	resp, err := p.client.Check(ctx, req.TransactionID, ExtractUUID(req.ReferenceID))
	if err != nil {
		return VerificationResult{}, fmt.Errorf("payment: verify: %w", err)
	}

	status := Status(resp.Status)
	if !status.Known() {
		p.logger.Warn("gateway reported unknown payment status",
			slog.String("status", resp.Status),
			slog.String("transaction_id", resp.TransactionNumber))
		status = StatusFailed
	}

	return VerificationResult{
		Success:        status == StatusSuccess,
		Status:         status,
		TransactionID:  resp.TransactionNumber,
		ReferenceID:    resp.Reference,
		Amount:         resp.Amount,
		Processor:      resp.Processor,
		SettlementDate: resp.DateSettled,
	}, nil
}
