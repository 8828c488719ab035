package models

import "time"

// User roles and statuses. Users are soft-deleted by flipping Status;
// documents are never removed.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"

	StatusActive      = "ACTIVE"
	StatusDeactivated = "DEACTIVATED"
)

type User struct {
	UserID           string    `json:"userid" bson:"userid"`
	Name             string    `json:"name" bson:"name"`
	Email            string    `json:"email" bson:"email"`
	Password         string    `json:"-" bson:"password"`
	Role             string    `json:"role" bson:"role"`
	Status           string    `json:"status" bson:"status"`
	Bio              string    `json:"bio,omitempty" bson:"bio,omitempty"`
	ContactNumber    string    `json:"contactNumber,omitempty" bson:"contactNumber,omitempty"`
	ProfileImage     string    `json:"profileImage,omitempty" bson:"profileImage,omitempty"`
	ProfileThumb     string    `json:"profileThumb,omitempty" bson:"profileThumb,omitempty"`
	TravelInterests  []string  `json:"travelInterests,omitempty" bson:"travelInterests,omitempty"`
	VisitedCountries []string  `json:"visitedCountries,omitempty" bson:"visitedCountries,omitempty"`
	// Rating is derived: the mean of all reviews received. Only the review
	// engine writes it.
	Rating        float64   `json:"rating" bson:"rating"`
	RefreshToken  string    `json:"-" bson:"refreshToken,omitempty"`
	RefreshExpiry time.Time `json:"-" bson:"refreshExpiry,omitempty"`
	LastLogin     time.Time `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// UserSummary is the slim shape embedded in travel requests and returned
// alongside joined records.
type UserSummary struct {
	UserID       string `json:"userid" bson:"userid"`
	Name         string `json:"name" bson:"name"`
	Email        string `json:"email" bson:"email"`
	ProfileImage string `json:"profileImage,omitempty" bson:"profileImage,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		UserID:       u.UserID,
		Name:         u.Name,
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
	}
}
