package model

// Currency is an ISO 4217 code supported by the app.
type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
)

// AppState is the single root document persisted per installation.
type AppState struct {
	ParentPinHash       string              `json:"parentPinHash,omitempty"`
	Children            []Child             `json:"children"`
	Currency            Currency            `json:"currency"`
	ParentNotifications []Notification      `json:"parentNotifications"`
	WithdrawalRequests  []WithdrawalRequest `json:"withdrawalRequests"`
	SetupComplete       bool                `json:"setupComplete"`
}

// DefaultState returns the document used on first run.
func DefaultState() *AppState {
	return &AppState{
		Children:            []Child{},
		Currency:            CurrencyINR,
		ParentNotifications: []Notification{},
		WithdrawalRequests:  []WithdrawalRequest{},
	}
}

// Child returns a pointer to the child with the given ID, or nil.
func (s *AppState) Child(id string) *Child {
	for i := range s.Children {
		if s.Children[i].ID == id {
			return &s.Children[i]
		}
	}
	return nil
}

// Request returns a pointer to the withdrawal request with the given ID, or nil.
func (s *AppState) Request(id string) *WithdrawalRequest {
	for i := range s.WithdrawalRequests {
		if s.WithdrawalRequests[i].ID == id {
			return &s.WithdrawalRequests[i]
		}
	}
	return nil
}
