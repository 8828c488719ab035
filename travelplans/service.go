package travelplans

import (
	"context"
	"strings"
	"time"

	"tripmate/apperrors"
	"tripmate/models"
	"tripmate/query"
	"tripmate/utils"

	"go.mongodb.org/mongo-driver/bson"
)

type Store interface {
	InsertPlan(ctx context.Context, plan *models.TravelPlan) error
	FindPlanByID(ctx context.Context, planID string) (*models.TravelPlan, error)
	UpdatePlanFields(ctx context.Context, planID string, set bson.M) (*models.TravelPlan, error)
	ListPlans(ctx context.Context, filter bson.M, skip, limit int64, sort bson.D) ([]models.TravelPlan, error)
	CountPlans(ctx context.Context, filter bson.M) (int64, error)
	DeletePlan(ctx context.Context, planID string) error
	DeleteRequestsByPlan(ctx context.Context, planID string) error
	DeleteReviewsByPlan(ctx context.Context, planID string) error
	FindUserIDsByInterest(ctx context.Context, interest string) ([]string, error)
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	Store Store
}

func NewService(store Store) *Service {
	return &Service{Store: store}
}

var searchFields = []string{"destination", "budgetRange", "itinerary"}

var enumFields = map[string][]string{
	"travelType": models.TravelTypeValues,
	"visibility": models.VisibilityValues,
}

type CreatePlanInput struct {
	Destination   string `json:"destination"`
	StartDateTime string `json:"startDateTime"`
	EndDateTime   string `json:"endDateTime"`
	BudgetRange   string `json:"budgetRange"`
	TravelType    string `json:"travelType"`
	Itinerary     string `json:"itinerary"`
	Visibility    string `json:"visibility"`
}

func (s *Service) CreatePlan(ctx context.Context, userID string, input CreatePlanInput) (*models.TravelPlan, error) {
	input.Destination = strings.TrimSpace(input.Destination)
	if input.Destination == "" || input.StartDateTime == "" || input.EndDateTime == "" || input.TravelType == "" {
		return nil, apperrors.BadRequest("Destination, dates and travel type are required")
	}

	start, err := utils.ParseDateTime(input.StartDateTime)
	if err != nil {
		return nil, apperrors.BadRequest(err.Error())
	}
	end, err := utils.ParseDateTime(input.EndDateTime)
	if err != nil {
		return nil, apperrors.BadRequest(err.Error())
	}

	travelType, ok := query.MatchEnum(models.TravelTypeValues, input.TravelType)
	if !ok {
		return nil, apperrors.BadRequest("Invalid travel type")
	}

	visibility := models.VisibilityPublic
	if input.Visibility != "" {
		visibility, ok = query.MatchEnum(models.VisibilityValues, input.Visibility)
		if !ok {
			return nil, apperrors.BadRequest("Invalid visibility")
		}
	}

	now := time.Now().UTC()
	plan := &models.TravelPlan{
		PlanID:        "p" + utils.GenerateRandomString(10),
		UserID:        userID,
		Destination:   input.Destination,
		StartDateTime: start,
		EndDateTime:   end,
		BudgetRange:   input.BudgetRange,
		TravelType:    travelType,
		Itinerary:     input.Itinerary,
		Visibility:    visibility,
		IsCompleted:   false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.Store.InsertPlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *Service) GetPlan(ctx context.Context, planID string) (*models.TravelPlan, error) {
	if planID == "" {
		return nil, apperrors.BadRequest("Plan id is required")
	}
	return s.Store.FindPlanByID(ctx, planID)
}

// ListPlans composes the browse filter: a free-text search term ORs over the
// string fields and matches enums exactly; named filters AND together. An
// unknown enum value drops that predicate rather than erroring.
func (s *Service) ListPlans(ctx context.Context, searchTerm string, filters map[string]string, opts query.Options) ([]models.TravelPlan, models.Meta, error) {
	var conds []bson.M
	if c := query.Search(searchTerm, searchFields, enumFields); c != nil {
		conds = append(conds, c)
	}
	conds = append(conds, query.Filters(filters, enumFields)...)
	filter := query.And(conds...)

	sort := opts.Sort(bson.D{{Key: "createdAt", Value: -1}})
	plans, err := s.Store.ListPlans(ctx, filter, opts.Skip(), int64(opts.Limit), sort)
	if err != nil {
		return nil, models.Meta{}, err
	}
	total, err := s.Store.CountPlans(ctx, filter)
	if err != nil {
		return nil, models.Meta{}, err
	}
	return plans, models.Meta{Total: total, Page: opts.Page, Limit: opts.Limit}, nil
}

// MyPlans lists the caller's own plans, optionally split by completion.
func (s *Service) MyPlans(ctx context.Context, userID string, isCompleted *bool, opts query.Options) ([]models.TravelPlan, models.Meta, error) {
	filter := bson.M{"userid": userID}
	if isCompleted != nil {
		filter["isCompleted"] = *isCompleted
	}

	sort := opts.Sort(bson.D{{Key: "createdAt", Value: -1}})
	plans, err := s.Store.ListPlans(ctx, filter, opts.Skip(), int64(opts.Limit), sort)
	if err != nil {
		return nil, models.Meta{}, err
	}
	total, err := s.Store.CountPlans(ctx, filter)
	if err != nil {
		return nil, models.Meta{}, err
	}
	return plans, models.Meta{Total: total, Page: opts.Page, Limit: opts.Limit}, nil
}

type UpdatePlanInput struct {
	Destination   *string `json:"destination"`
	StartDateTime *string `json:"startDateTime"`
	EndDateTime   *string `json:"endDateTime"`
	BudgetRange   *string `json:"budgetRange"`
	TravelType    *string `json:"travelType"`
	Itinerary     *string `json:"itinerary"`
	Visibility    *string `json:"visibility"`
	IsCompleted   *bool   `json:"isCompleted"`
}

// UpdatePlan applies a partial owner-only update.
func (s *Service) UpdatePlan(ctx context.Context, userID, planID string, input UpdatePlanInput) (*models.TravelPlan, error) {
	plan, err := s.Store.FindPlanByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.UserID != userID {
		return nil, apperrors.Forbidden("You can only update your own travel plan")
	}

	set := bson.M{}
	if input.Destination != nil {
		if d := strings.TrimSpace(*input.Destination); d != "" {
			set["destination"] = d
		}
	}
	if input.StartDateTime != nil {
		start, err := utils.ParseDateTime(*input.StartDateTime)
		if err != nil {
			return nil, apperrors.BadRequest(err.Error())
		}
		set["startDateTime"] = start
	}
	if input.EndDateTime != nil {
		end, err := utils.ParseDateTime(*input.EndDateTime)
		if err != nil {
			return nil, apperrors.BadRequest(err.Error())
		}
		set["endDateTime"] = end
	}
	if input.BudgetRange != nil {
		set["budgetRange"] = *input.BudgetRange
	}
	if input.TravelType != nil {
		travelType, ok := query.MatchEnum(models.TravelTypeValues, *input.TravelType)
		if !ok {
			return nil, apperrors.BadRequest("Invalid travel type")
		}
		set["travelType"] = travelType
	}
	if input.Itinerary != nil {
		set["itinerary"] = *input.Itinerary
	}
	if input.Visibility != nil {
		visibility, ok := query.MatchEnum(models.VisibilityValues, *input.Visibility)
		if !ok {
			return nil, apperrors.BadRequest("Invalid visibility")
		}
		set["visibility"] = visibility
	}
	if input.IsCompleted != nil {
		set["isCompleted"] = *input.IsCompleted
	}

	if len(set) == 0 {
		return plan, nil
	}
	return s.Store.UpdatePlanFields(ctx, planID, set)
}

// DeletePlan removes a plan and everything hanging off it in one
// transaction: reviews first, then requests, then the plan itself.
func (s *Service) DeletePlan(ctx context.Context, userID, role, planID string) error {
	plan, err := s.Store.FindPlanByID(ctx, planID)
	if err != nil {
		return err
	}
	if plan.UserID != userID && role != models.RoleAdmin {
		return apperrors.Forbidden("You can only delete your own travel plan")
	}

	return s.Store.WithTransaction(ctx, func(tc context.Context) error {
		if err := s.Store.DeleteReviewsByPlan(tc, planID); err != nil {
			return err
		}
		if err := s.Store.DeleteRequestsByPlan(tc, planID); err != nil {
			return err
		}
		return s.Store.DeletePlan(tc, planID)
	})
}
