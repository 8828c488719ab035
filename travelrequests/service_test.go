package travelrequests

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"tripmate/apperrors"
	"tripmate/models"
	"tripmate/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeStore struct {
	users    map[string]*models.User
	plans    map[string]*models.TravelPlan
	requests []*models.TravelRequest

	// runs after each read of a request, before the caller acts on it
	afterFindRequest func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: map[string]*models.User{},
		plans: map[string]*models.TravelPlan{},
	}
}

func (f *fakeStore) FindPlanByID(_ context.Context, planID string) (*models.TravelPlan, error) {
	if plan, ok := f.plans[planID]; ok {
		return plan, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeStore) FindUserByID(_ context.Context, userID string) (*models.User, error) {
	if user, ok := f.users[userID]; ok {
		return user, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeStore) HasPendingRequest(_ context.Context, planID, requesterID string) (bool, error) {
	for _, req := range f.requests {
		if req.PlanID == planID && req.RequesterID == requesterID && req.Status == models.RequestPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) InsertRequest(_ context.Context, req *models.TravelRequest) error {
	f.requests = append(f.requests, req)
	return nil
}

func (f *fakeStore) FindRequestByID(_ context.Context, requestID string) (*models.TravelRequest, error) {
	for _, req := range f.requests {
		if req.RequestID == requestID {
			snapshot := *req
			if f.afterFindRequest != nil {
				f.afterFindRequest()
			}
			return &snapshot, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeStore) SettlePendingRequest(_ context.Context, requestID, status string) (*models.TravelRequest, error) {
	for _, req := range f.requests {
		if req.RequestID == requestID && req.Status == models.RequestPending {
			req.Status = status
			req.UpdatedAt = time.Now().UTC()
			snapshot := *req
			return &snapshot, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeStore) ListRequestsByRequester(_ context.Context, requesterID string, skip, limit int64) ([]models.TravelRequest, int64, error) {
	var mine []models.TravelRequest
	for _, req := range f.requests {
		if req.RequesterID == requesterID {
			mine = append(mine, *req)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })

	total := int64(len(mine))
	if skip >= total {
		return nil, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return mine[skip:end], total, nil
}

func (f *fakeStore) ListRequestsByPlan(_ context.Context, planID string) ([]models.TravelRequest, error) {
	var out []models.TravelRequest
	for _, req := range f.requests {
		if req.PlanID == planID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func seedUser(f *fakeStore, id, name string) *models.User {
	user := &models.User{UserID: id, Name: name, Email: id + "@example.com", Status: models.StatusActive}
	f.users[id] = user
	return user
}

func seedPlan(f *fakeStore, id, ownerID, visibility string) *models.TravelPlan {
	plan := &models.TravelPlan{
		PlanID:      id,
		UserID:      ownerID,
		Destination: "Lisbon",
		Visibility:  visibility,
		TravelType:  models.TravelTypeSolo,
		CreatedAt:   time.Now().UTC(),
	}
	f.plans[id] = plan
	return plan
}

func TestCreateRequestPlanNotFound(t *testing.T) {
	store := newFakeStore()
	seedUser(store, "u1", "Asha")
	svc := NewService(store)

	_, err := svc.CreateRequest(context.Background(), "u1", "missing")
	assert.True(t, errors.Is(err, mongo.ErrNoDocuments))
}

func TestCreateRequestToOwnPlan(t *testing.T) {
	store := newFakeStore()
	seedUser(store, "u1", "Asha")
	seedPlan(store, "p1", "u1", models.VisibilityPublic)
	svc := NewService(store)

	_, err := svc.CreateRequest(context.Background(), "u1", "p1")

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.Contains(t, appErr.Message, "own travel plan")
}

func TestCreateRequestToPrivatePlan(t *testing.T) {
	store := newFakeStore()
	seedUser(store, "u1", "Asha")
	seedUser(store, "u2", "Brij")
	seedPlan(store, "p1", "u1", models.VisibilityPrivate)
	svc := NewService(store)

	_, err := svc.CreateRequest(context.Background(), "u2", "p1")

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.Contains(t, appErr.Message, "private")
}

func TestCreateRequestEmbedsSummariesAndTargetsOwner(t *testing.T) {
	store := newFakeStore()
	owner := seedUser(store, "u1", "Asha")
	seedUser(store, "u2", "Brij")
	plan := seedPlan(store, "p1", "u1", models.VisibilityPublic)
	svc := NewService(store)

	req, err := svc.CreateRequest(context.Background(), "u2", "p1")
	require.NoError(t, err)

	assert.Equal(t, models.RequestPending, req.Status)
	assert.Equal(t, owner.UserID, req.ReceiverID)
	assert.Equal(t, "u2", req.RequesterID)
	assert.Equal(t, "Brij", req.Requester.Name)
	assert.Equal(t, "Asha", req.Receiver.Name)
	assert.Equal(t, plan.Destination, req.Plan.Destination)
}

func TestCreateRequestDuplicatePending(t *testing.T) {
	store := newFakeStore()
	seedUser(store, "u1", "Asha")
	seedUser(store, "u2", "Brij")
	seedPlan(store, "p1", "u1", models.VisibilityPublic)
	svc := NewService(store)

	_, err := svc.CreateRequest(context.Background(), "u2", "p1")
	require.NoError(t, err)

	_, err = svc.CreateRequest(context.Background(), "u2", "p1")
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.Contains(t, appErr.Message, "already sent")
}

func TestCreateRequestAllowedAgainAfterRejection(t *testing.T) {
	store := newFakeStore()
	seedUser(store, "u1", "Asha")
	seedUser(store, "u2", "Brij")
	seedPlan(store, "p1", "u1", models.VisibilityPublic)
	svc := NewService(store)

	first, err := svc.CreateRequest(context.Background(), "u2", "p1")
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), "u1", first.RequestID, "REJECTED")
	require.NoError(t, err)

	// a settled request no longer blocks a new one
	_, err = svc.CreateRequest(context.Background(), "u2", "p1")
	assert.NoError(t, err)
}

func TestRespondInvalidStatus(t *testing.T) {
	svc := NewService(newFakeStore())

	_, err := svc.Respond(context.Background(), "u1", "r1", "MAYBE")

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
}

func TestRespondOnlyReceiverMay(t *testing.T) {
	store := newFakeStore()
	seedUser(store, "u1", "Asha")
	seedUser(store, "u2", "Brij")
	seedUser(store, "u3", "Chen")
	seedPlan(store, "p1", "u1", models.VisibilityPublic)
	svc := NewService(store)

	req, err := svc.CreateRequest(context.Background(), "u2", "p1")
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), "u3", req.RequestID, "ACCEPTED")

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Status)
}

func TestRespondTransitionAndSoftRepeat(t *testing.T) {
	store := newFakeStore()
	seedUser(store, "u1", "Asha")
	seedUser(store, "u2", "Brij")
	seedPlan(store, "p1", "u1", models.VisibilityPublic)
	svc := NewService(store)

	req, err := svc.CreateRequest(context.Background(), "u2", "p1")
	require.NoError(t, err)

	result, err := svc.Respond(context.Background(), "u1", req.RequestID, "accepted")
	require.NoError(t, err)
	assert.False(t, result.AlreadyProcessed)
	assert.Equal(t, models.RequestAccepted, result.Request.Status)

	// the second response is a soft failure, not an error
	repeat, err := svc.Respond(context.Background(), "u1", req.RequestID, "REJECTED")
	require.NoError(t, err)
	assert.True(t, repeat.AlreadyProcessed)
	assert.Equal(t, models.RequestAccepted, repeat.Request.Status)
}

func TestRespondLosesRaceToConcurrentSettle(t *testing.T) {
	store := newFakeStore()
	seedUser(store, "u1", "Asha")
	seedUser(store, "u2", "Brij")
	seedPlan(store, "p1", "u1", models.VisibilityPublic)
	svc := NewService(store)

	req, err := svc.CreateRequest(context.Background(), "u2", "p1")
	require.NoError(t, err)

	// another responder settles the request between our read and our update
	stored := store.requests[0]
	store.afterFindRequest = func() { stored.Status = models.RequestAccepted }

	result, err := svc.Respond(context.Background(), "u1", req.RequestID, "REJECTED")
	require.NoError(t, err)

	assert.True(t, result.AlreadyProcessed)
	assert.Equal(t, models.RequestAccepted, result.Request.Status)
	// the terminal state never flips
	assert.Equal(t, models.RequestAccepted, stored.Status)
}

func TestMyRequestsNewestFirstWithMeta(t *testing.T) {
	store := newFakeStore()
	seedUser(store, "u1", "Asha")
	seedUser(store, "u2", "Brij")
	seedPlan(store, "p1", "u1", models.VisibilityPublic)
	seedPlan(store, "p2", "u1", models.VisibilityPublic)
	svc := NewService(store)

	first, err := svc.CreateRequest(context.Background(), "u2", "p1")
	require.NoError(t, err)
	first.CreatedAt = time.Now().UTC().Add(-time.Hour)

	second, err := svc.CreateRequest(context.Background(), "u2", "p2")
	require.NoError(t, err)

	requests, meta, err := svc.MyRequests(context.Background(), "u2", query.Options{Page: 1, Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, int64(2), meta.Total)
	require.Len(t, requests, 2)
	assert.Equal(t, second.RequestID, requests[0].RequestID)
	assert.Equal(t, first.RequestID, requests[1].RequestID)
}

func TestPlanRequestsOwnerOnly(t *testing.T) {
	store := newFakeStore()
	seedUser(store, "u1", "Asha")
	seedUser(store, "u2", "Brij")
	seedPlan(store, "p1", "u1", models.VisibilityPublic)
	svc := NewService(store)

	_, err := svc.CreateRequest(context.Background(), "u2", "p1")
	require.NoError(t, err)

	_, err = svc.PlanRequests(context.Background(), "u2", "p1")
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)

	requests, err := svc.PlanRequests(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.Len(t, requests, 1)
}
