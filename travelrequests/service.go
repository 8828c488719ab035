package travelrequests

import (
	"context"
	"errors"
	"strings"
	"time"

	"tripmate/apperrors"
	"tripmate/models"
	"tripmate/query"
	"tripmate/utils"

	"go.mongodb.org/mongo-driver/mongo"
)

type Store interface {
	FindPlanByID(ctx context.Context, planID string) (*models.TravelPlan, error)
	FindUserByID(ctx context.Context, userID string) (*models.User, error)
	HasPendingRequest(ctx context.Context, planID, requesterID string) (bool, error)
	InsertRequest(ctx context.Context, req *models.TravelRequest) error
	FindRequestByID(ctx context.Context, requestID string) (*models.TravelRequest, error)
	SettlePendingRequest(ctx context.Context, requestID, status string) (*models.TravelRequest, error)
	ListRequestsByRequester(ctx context.Context, requesterID string, skip, limit int64) ([]models.TravelRequest, int64, error)
	ListRequestsByPlan(ctx context.Context, planID string) ([]models.TravelRequest, error)
}

type Service struct {
	Store Store
}

func NewService(store Store) *Service {
	return &Service{Store: store}
}

// CreateRequest sends a join request to a plan's owner. The requester and
// receiver summaries are embedded at creation so listings need no joins.
func (s *Service) CreateRequest(ctx context.Context, requesterID, planID string) (*models.TravelRequest, error) {
	if planID == "" {
		return nil, apperrors.BadRequest("Plan id is required")
	}

	plan, err := s.Store.FindPlanByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.UserID == requesterID {
		return nil, apperrors.BadRequest("You cannot send a request to your own travel plan")
	}
	if plan.Visibility == models.VisibilityPrivate {
		return nil, apperrors.BadRequest("This travel plan is private")
	}

	pending, err := s.Store.HasPendingRequest(ctx, planID, requesterID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperrors.BadRequest("You have already sent a request for this travel plan")
	}

	requester, err := s.Store.FindUserByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	receiver, err := s.Store.FindUserByID(ctx, plan.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	req := &models.TravelRequest{
		RequestID:   "r" + utils.GenerateRandomString(10),
		PlanID:      plan.PlanID,
		RequesterID: requester.UserID,
		ReceiverID:  receiver.UserID,
		Status:      models.RequestPending,
		Requester:   requester.Summary(),
		Receiver:    receiver.Summary(),
		Plan:        plan.Summary(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Store.InsertRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// RespondResult distinguishes a real transition from the soft outcome where
// the request had already left PENDING. The latter is not an error: the
// caller gets a 200 with a failure payload.
type RespondResult struct {
	Request          *models.TravelRequest
	AlreadyProcessed bool
}

// Respond moves a PENDING request to ACCEPTED or REJECTED. Only the plan
// owner may respond.
func (s *Service) Respond(ctx context.Context, actorID, requestID, status string) (*RespondResult, error) {
	if !models.ValidRequestResponse(status) {
		return nil, apperrors.BadRequest("Status must be ACCEPTED or REJECTED")
	}
	status = strings.ToUpper(status)

	req, err := s.Store.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ReceiverID != actorID {
		return nil, apperrors.Unauthorized("You are not authorized to respond to this request")
	}
	if req.Status != models.RequestPending {
		return &RespondResult{Request: req, AlreadyProcessed: true}, nil
	}

	updated, err := s.Store.SettlePendingRequest(ctx, requestID, status)
	if err != nil {
		// no match means a concurrent response settled it first
		if errors.Is(err, mongo.ErrNoDocuments) {
			latest, rerr := s.Store.FindRequestByID(ctx, requestID)
			if rerr != nil {
				return nil, rerr
			}
			return &RespondResult{Request: latest, AlreadyProcessed: true}, nil
		}
		return nil, err
	}
	return &RespondResult{Request: updated}, nil
}

// MyRequests lists the caller's sent requests, newest first, with the total
// taken in the same snapshot as the page.
func (s *Service) MyRequests(ctx context.Context, requesterID string, opts query.Options) ([]models.TravelRequest, models.Meta, error) {
	requests, total, err := s.Store.ListRequestsByRequester(ctx, requesterID, opts.Skip(), int64(opts.Limit))
	if err != nil {
		return nil, models.Meta{}, err
	}
	return requests, models.Meta{Total: total, Page: opts.Page, Limit: opts.Limit}, nil
}

// PlanRequests lists every request against one plan, owner-only.
func (s *Service) PlanRequests(ctx context.Context, actorID, planID string) ([]models.TravelRequest, error) {
	plan, err := s.Store.FindPlanByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.UserID != actorID {
		return nil, apperrors.Forbidden("You can only view requests for your own travel plan")
	}
	return s.Store.ListRequestsByPlan(ctx, planID)
}
