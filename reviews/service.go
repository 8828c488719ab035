package reviews

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"tripmate/apperrors"
	"tripmate/models"
	"tripmate/query"
	"tripmate/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, userID string) (*models.User, error)
	FindPlanByID(ctx context.Context, planID string) (*models.TravelPlan, error)
	ListRequestsByPlan(ctx context.Context, planID string) ([]models.TravelRequest, error)
	CountReviewsForPair(ctx context.Context, planID, reviewerID, reviewedID string) (int64, error)
	InsertReview(ctx context.Context, review *models.Review) error
	AverageRating(ctx context.Context, reviewedID string) (float64, error)
	SetUserRating(ctx context.Context, userID string, rating float64) error
	ListReviews(ctx context.Context, filter bson.M, skip, limit int64, sort bson.D) ([]models.Review, error)
	CountReviews(ctx context.Context, filter bson.M) (int64, error)
	ListTestimonials(ctx context.Context) ([]models.Review, error)
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	Store Store
}

func NewService(store Store) *Service {
	return &Service{Store: store}
}

type CreateReviewInput struct {
	TravelPlanID string
	ReviewedID   string
	Rating       string
	Comment      string
}

// CreateReview lets a plan owner rate an accepted buddy of that trip. The
// insert and the rating recompute happen in one transaction so the stored
// mean never drifts from the review set.
func (s *Service) CreateReview(ctx context.Context, reviewerEmail string, input CreateReviewInput) (*models.Review, error) {
	if input.TravelPlanID == "" || input.ReviewedID == "" || input.Rating == "" {
		return nil, apperrors.BadRequest("Travel plan, reviewed user and rating are required")
	}

	rating, err := strconv.ParseFloat(strings.TrimSpace(input.Rating), 64)
	if err != nil || math.IsNaN(rating) || rating < 1 || rating > 5 {
		return nil, apperrors.BadRequest("Rating must be a number between 1 and 5")
	}

	reviewer, err := s.Store.FindUserByEmail(ctx, reviewerEmail)
	if err != nil {
		return nil, err
	}

	plan, err := s.Store.FindPlanByID(ctx, input.TravelPlanID)
	if err != nil {
		return nil, err
	}
	if plan.UserID != reviewer.UserID {
		return nil, apperrors.Forbidden("You can only review buddies for your own trip!")
	}

	requests, err := s.Store.ListRequestsByPlan(ctx, plan.PlanID)
	if err != nil {
		return nil, err
	}
	accepted := false
	for _, req := range requests {
		if req.RequesterID == input.ReviewedID && req.Status == models.RequestAccepted {
			accepted = true
			break
		}
	}
	if !accepted {
		return nil, apperrors.BadRequest("You can only review an accepted buddy of this trip")
	}

	reviewed, err := s.Store.FindUserByID(ctx, input.ReviewedID)
	if err != nil {
		return nil, err
	}

	review := &models.Review{
		ReviewID:     "rv" + utils.GenerateRandomString(10),
		TravelPlanID: plan.PlanID,
		ReviewerID:   reviewer.UserID,
		ReviewerName: reviewer.Name,
		ReviewedID:   reviewed.UserID,
		ReviewedName: reviewed.Name,
		Destination:  plan.Destination,
		Rating:       rating,
		Comment:      strings.TrimSpace(input.Comment),
		CreatedAt:    time.Now().UTC(),
	}

	// The duplicate check happens inside the transaction so a racing review
	// of the same pair cannot slip between check and insert. The unique index
	// on (travelPlanId, reviewerId, reviewedId) backstops non-transactional
	// writers.
	err = s.Store.WithTransaction(ctx, func(tc context.Context) error {
		count, err := s.Store.CountReviewsForPair(tc, plan.PlanID, reviewer.UserID, input.ReviewedID)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.BadRequest("You have already reviewed this traveler for this trip")
		}
		if err := s.Store.InsertReview(tc, review); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return apperrors.BadRequest("You have already reviewed this traveler for this trip")
			}
			return err
		}
		avg, err := s.Store.AverageRating(tc, reviewed.UserID)
		if err != nil {
			return err
		}
		return s.Store.SetUserRating(tc, reviewed.UserID, avg)
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

var searchFields = []string{"comment", "reviewerName", "reviewedName", "destination"}

// id filters match exactly; everything else goes through the search term.
var idFilterKeys = []string{"reviewerId", "reviewedId", "travelPlanId"}

// ListReviews searches reviews by free text and exact id filters. The
// default order is highest rating first.
func (s *Service) ListReviews(ctx context.Context, searchTerm string, filters map[string]string, opts query.Options) ([]models.Review, models.Meta, error) {
	var conds []bson.M
	if c := query.Search(searchTerm, searchFields, nil); c != nil {
		conds = append(conds, c)
	}
	for _, key := range idFilterKeys {
		if v := filters[key]; v != "" {
			conds = append(conds, bson.M{key: v})
		}
	}
	filter := query.And(conds...)

	sort := opts.Sort(bson.D{{Key: "rating", Value: -1}})
	reviews, err := s.Store.ListReviews(ctx, filter, opts.Skip(), int64(opts.Limit), sort)
	if err != nil {
		return nil, models.Meta{}, err
	}
	total, err := s.Store.CountReviews(ctx, filter)
	if err != nil {
		return nil, models.Meta{}, err
	}
	return reviews, models.Meta{Total: total, Page: opts.Page, Limit: opts.Limit}, nil
}

// Testimonials are the public highlights: rating 4.0 or above with a
// non-empty comment, best first, unpaginated.
func (s *Service) Testimonials(ctx context.Context) ([]models.Review, error) {
	return s.Store.ListTestimonials(ctx)
}
