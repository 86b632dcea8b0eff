// Package payment abstracts the payment gateway behind a provider interface
// so the rest of the system never sees gateway-specific wire shapes. Two
// implementations exist: a mock for development and an EZPay+ adapter.
package payment

import "context"

// Status is a payment outcome. The set is fixed; providers must map whatever
// their gateway reports onto one of these.
type Status string

const (
	StatusSuccess   Status = "Success"
	StatusFailed    Status = "Failed"
	StatusInitiated Status = "Initiated"
	StatusCancelled Status = "Cancelled"
)

// Known reports whether s is one of the defined statuses.
func (s Status) Known() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusInitiated, StatusCancelled:
		return true
	}
	return false
}

// InitiationRequest starts a payment attempt. The reference ID is generated
// by the caller; the amount is never part of the request, it comes from
// server-side service configuration.
type InitiationRequest struct {
	ReferenceID  string `json:"referenceId"`
	ServiceType  string `json:"serviceType"`
	Email        string `json:"email"`
	CustomerName string `json:"customerName"`
}

// InitiationResult tells the caller where to send the user.
type InitiationResult struct {
	RedirectURL string `json:"redirectUrl"`
	Token       string `json:"token"`
	ReferenceID string `json:"referenceId"`
}

// VerificationRequest checks the outcome of a payment after the user returns
// from the gateway.
type VerificationRequest struct {
	TransactionID string `json:"transactionId"`
	ReferenceID   string `json:"referenceId"`
	ServiceType   string `json:"serviceType,omitempty"`
}

// VerificationResult is the generic verification outcome.
type VerificationResult struct {
	Success        bool   `json:"success"`
	Status         Status `json:"status"`
	TransactionID  string `json:"transactionId"`
	ReferenceID    string `json:"referenceId"`
	Amount         string `json:"amount"`
	Processor      string `json:"processor,omitempty"`
	SettlementDate string `json:"settlementDate,omitempty"`
}

// Provider is the gateway contract. Implementations are stateless; one
// instance is safe for concurrent use across requests.
type Provider interface {
	Name() string
	Initiate(ctx context.Context, req InitiationRequest) (InitiationResult, error)
	Verify(ctx context.Context, req VerificationRequest) (VerificationResult, error)
}
