package models

import (
	"strings"
	"time"
)

const (
	TravelTypeSolo    = "SOLO"
	TravelTypeFamily  = "FAMILY"
	TravelTypeFriends = "FRIENDS"

	VisibilityPublic  = "PUBLIC"
	VisibilityPrivate = "PRIVATE"
)

var TravelTypeValues = []string{TravelTypeSolo, TravelTypeFamily, TravelTypeFriends}
var VisibilityValues = []string{VisibilityPublic, VisibilityPrivate}

type TravelPlan struct {
	PlanID        string    `json:"planid" bson:"planid"`
	UserID        string    `json:"userid" bson:"userid"`
	Destination   string    `json:"destination" bson:"destination"`
	StartDateTime time.Time `json:"startDateTime" bson:"startDateTime"`
	EndDateTime   time.Time `json:"endDateTime" bson:"endDateTime"`
	BudgetRange   string    `json:"budgetRange,omitempty" bson:"budgetRange,omitempty"`
	TravelType    string    `json:"travelType" bson:"travelType"`
	Itinerary     string    `json:"itinerary,omitempty" bson:"itinerary,omitempty"`
	Visibility    string    `json:"visibility" bson:"visibility"`
	IsCompleted   bool      `json:"isCompleted" bson:"isCompleted"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

type PlanSummary struct {
	PlanID        string    `json:"planid" bson:"planid"`
	Destination   string    `json:"destination" bson:"destination"`
	StartDateTime time.Time `json:"startDateTime" bson:"startDateTime"`
	EndDateTime   time.Time `json:"endDateTime" bson:"endDateTime"`
	UserID        string    `json:"userid" bson:"userid"`
}

func (p *TravelPlan) Summary() PlanSummary {
	return PlanSummary{
		PlanID:        p.PlanID,
		Destination:   p.Destination,
		StartDateTime: p.StartDateTime,
		EndDateTime:   p.EndDateTime,
		UserID:        p.UserID,
	}
}

// Request lifecycle: PENDING is the only state with outgoing transitions.
const (
	RequestPending  = "PENDING"
	RequestAccepted = "ACCEPTED"
	RequestRejected = "REJECTED"
)

type TravelRequest struct {
	RequestID   string      `json:"requestid" bson:"requestid"`
	PlanID      string      `json:"planid" bson:"planid"`
	RequesterID string      `json:"requesterid" bson:"requesterid"`
	ReceiverID  string      `json:"receiverid" bson:"receiverid"`
	Status      string      `json:"status" bson:"status"`
	Requester   UserSummary `json:"requester" bson:"requester"`
	Receiver    UserSummary `json:"receiver" bson:"receiver"`
	Plan        PlanSummary `json:"plan" bson:"plan"`
	CreatedAt   time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// ValidRequestResponse reports whether status is an allowed terminal state
// for responding to a request.
func ValidRequestResponse(status string) bool {
	s := strings.ToUpper(status)
	return s == RequestAccepted || s == RequestRejected
}
