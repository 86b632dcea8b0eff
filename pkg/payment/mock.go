package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	mockInitiateDelay = 300 * time.Millisecond
	mockVerifyDelay   = 200 * time.Millisecond
)

// MockProvider simulates a gateway without network calls. Verification
// outcome is steered by the transaction ID itself: an ID containing "FAIL"
// fails, "PENDING" stays initiated, anything else succeeds. This is a test
// seam for development environments, not a security boundary.
type MockProvider struct {
	cfg    Config
	logger *slog.Logger
	delay  func(context.Context, time.Duration) error
}

// NewMockProvider returns a mock wired to the given service configuration.
func NewMockProvider(cfg Config, logger *slog.Logger) *MockProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockProvider{cfg: cfg, logger: logger, delay: sleep}
}

func (p *MockProvider) Name() string { return "Mock Payment Gateway" }

func (p *MockProvider) Initiate(ctx context.Context, req InitiationRequest) (InitiationResult, error) {
	if _, err := p.cfg.Service(req.ServiceType); err != nil {
		return InitiationResult{}, err
	}

	if err := p.delay(ctx, mockInitiateDelay); err != nil {
		return InitiationResult{}, fmt.Errorf("payment: mock initiate: %w", err)
	}

	p.logger.Debug("mock payment initiated",
		slog.String("reference_id", req.ReferenceID),
		slog.String("service_type", req.ServiceType))

	return InitiationResult{
		RedirectURL: "/payment/mock?token=" + req.ReferenceID,
		Token:       req.ReferenceID,
		ReferenceID: req.ReferenceID,
	}, nil
}

func (p *MockProvider) Verify(ctx context.Context, req VerificationRequest) (VerificationResult, error) {
	if err := p.delay(ctx, mockVerifyDelay); err != nil {
		return VerificationResult{}, fmt.Errorf("payment: mock verify: %w", err)
	}

	status := StatusSuccess
	switch {
	case strings.Contains(req.TransactionID, "FAIL"):
		status = StatusFailed
	case strings.Contains(req.TransactionID, "PENDING"):
		status = StatusInitiated
	}

	amount := "0.00"
	if svc, err := p.cfg.Service(req.ServiceType); err == nil {
		amount = fmt.Sprintf("%.2f", svc.Amount)
	}

	return VerificationResult{
		Success:        status == StatusSuccess,
		Status:         status,
		TransactionID:  req.TransactionID,
		ReferenceID:    req.ReferenceID,
		Amount:         amount,
		Processor:      "Mock Credit Card",
		SettlementDate: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
