package models

import "time"

// Review links a reviewer (plan owner) to a reviewed buddy for one trip.
// Reviewer/reviewed names and the trip destination are denormalized so the
// listing search does not need joins.
type Review struct {
	ReviewID     string    `json:"reviewid" bson:"reviewid"`
	TravelPlanID string    `json:"travelPlanId" bson:"travelPlanId"`
	ReviewerID   string    `json:"reviewerId" bson:"reviewerId"`
	ReviewerName string    `json:"reviewerName" bson:"reviewerName"`
	ReviewedID   string    `json:"reviewedId" bson:"reviewedId"`
	ReviewedName string    `json:"reviewedName" bson:"reviewedName"`
	Destination  string    `json:"destination" bson:"destination"`
	Rating       float64   `json:"rating" bson:"rating"`
	Comment      string    `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}
