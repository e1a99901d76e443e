// internal/models/thread.go
package models

import (
	"encoding/json"
	"time"
)

// ThreadIndex maps home id to the id of the negotiation thread already open
// for a referral.
type ThreadIndex map[string]string

// Lookup returns the thread id for homeID, or nil.
func (t ThreadIndex) Lookup(homeID string) *string {
	id, ok := t[homeID]
	if !ok {
		return nil
	}
	return &id
}

type Thread struct {
	ID             string    `json:"id"`
	ReferralID     string    `json:"referralId"`
	HomeID         string    `json:"homeId"`
	WaitingOn      string    `json:"waitingOn,omitempty"`
	Decision       string    `json:"decision,omitempty"`
	DecisionReason string    `json:"decisionReason,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type EventType string

const (
	EventStatusChange    EventType = "STATUS_CHANGE"
	EventMessageSent     EventType = "MESSAGE_SENT"
	EventDecisionMade    EventType = "DECISION_MADE"
	EventThreadCreated   EventType = "THREAD_CREATED"
	EventMatchesComputed EventType = "MATCHES_COMPUTED"
)

type Event struct {
	ID         string          `json:"id"`
	ReferralID string          `json:"referralId"`
	Type       EventType       `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"createdAt"`
}
