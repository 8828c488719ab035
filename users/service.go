package users

import (
	"context"
	"strings"

	"tripmate/apperrors"
	"tripmate/models"
	"tripmate/query"
	"tripmate/utils"

	"go.mongodb.org/mongo-driver/bson"
)

type Store interface {
	FindUserByID(ctx context.Context, userID string) (*models.User, error)
	UpdateUserFields(ctx context.Context, userID string, set bson.M) error
	ListUsers(ctx context.Context, filter bson.M, skip, limit int64, sort bson.D) ([]models.User, error)
	CountUsers(ctx context.Context, filter bson.M) (int64, error)
}

type Service struct {
	Store Store
}

func NewService(store Store) *Service {
	return &Service{Store: store}
}

// Traveler listings only expose regular active accounts.
var listBase = bson.M{"role": models.RoleUser, "status": models.StatusActive}

var searchFields = []string{"name", "email", "bio"}

var enumFields = map[string][]string{}

// ListTravelers returns active USER accounts matching the search term and
// field filters, with the list meta computed over the same predicate.
func (s *Service) ListTravelers(ctx context.Context, searchTerm string, filters map[string]string, opts query.Options) ([]models.User, models.Meta, error) {
	conds := []bson.M{listBase}
	if c := query.Search(searchTerm, searchFields, enumFields); c != nil {
		conds = append(conds, c)
	}
	conds = append(conds, query.Filters(filters, enumFields)...)
	filter := query.And(conds...)

	sort := opts.Sort(bson.D{{Key: "createdAt", Value: -1}})
	travelers, err := s.Store.ListUsers(ctx, filter, opts.Skip(), int64(opts.Limit), sort)
	if err != nil {
		return nil, models.Meta{}, err
	}
	total, err := s.Store.CountUsers(ctx, filter)
	if err != nil {
		return nil, models.Meta{}, err
	}
	return travelers, models.Meta{Total: total, Page: opts.Page, Limit: opts.Limit}, nil
}

func (s *Service) GetUser(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, apperrors.BadRequest("User id is required")
	}
	return s.Store.FindUserByID(ctx, userID)
}

type UpdateProfileInput struct {
	Name             string   `json:"name"`
	Bio              string   `json:"bio"`
	ContactNumber    string   `json:"contactNumber"`
	TravelInterests  []string `json:"travelInterests"`
	VisitedCountries []string `json:"visitedCountries"`
	ProfileImage     string   `json:"-"`
	ProfileThumb     string   `json:"-"`
}

// UpdateProfile applies a partial update. Scalar fields replace when
// non-empty; travelInterests and visitedCountries append to the stored
// lists instead of replacing them.
func (s *Service) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.User, error) {
	user, err := s.Store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if v := strings.TrimSpace(input.Name); v != "" {
		set["name"] = v
	}
	if v := strings.TrimSpace(input.Bio); v != "" {
		set["bio"] = v
	}
	if v := strings.TrimSpace(input.ContactNumber); v != "" {
		set["contactNumber"] = v
	}
	if len(input.TravelInterests) > 0 {
		set["travelInterests"] = utils.MergeUnique(user.TravelInterests, input.TravelInterests)
	}
	if len(input.VisitedCountries) > 0 {
		set["visitedCountries"] = utils.MergeUnique(user.VisitedCountries, input.VisitedCountries)
	}
	if input.ProfileImage != "" {
		set["profileImage"] = input.ProfileImage
	}
	if input.ProfileThumb != "" {
		set["profileThumb"] = input.ProfileThumb
	}

	if len(set) == 0 {
		return user, nil
	}

	if err := s.Store.UpdateUserFields(ctx, userID, set); err != nil {
		return nil, err
	}
	return s.Store.FindUserByID(ctx, userID)
}

// Deactivate soft-deletes an account. The document stays so reviews and
// requests keep resolving their embedded summaries.
func (s *Service) Deactivate(ctx context.Context, actorRole, targetID string) error {
	if actorRole != models.RoleAdmin {
		return apperrors.Forbidden("Admin access required")
	}
	user, err := s.Store.FindUserByID(ctx, targetID)
	if err != nil {
		return err
	}
	if user.Status == models.StatusDeactivated {
		return apperrors.BadRequest("User is already deactivated")
	}
	return s.Store.UpdateUserFields(ctx, targetID, bson.M{"status": models.StatusDeactivated})
}
