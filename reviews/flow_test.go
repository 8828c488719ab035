package reviews

import (
	"context"
	"testing"
	"time"

	"tripmate/models"
	"tripmate/travelrequests"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

// the remaining travelrequests.Store methods, so the same fake backs both
// engines in the end-to-end flow

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
			return req, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeStore) SettlePendingRequest(_ context.Context, requestID, status string) (*models.TravelRequest, error) {
	for _, req := range f.requests {
		if req.RequestID == requestID && req.Status == models.RequestPending {
			req.Status = status
			req.UpdatedAt = time.Now().UTC()
			return req, nil
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
	return mine, int64(len(mine)), nil
}

// TestJoinAcceptReviewFlow drives the whole lifecycle: two buddies request
// to join, the owner accepts, reviews land, and the reviewed users' stored
// ratings track the running mean.
func TestJoinAcceptReviewFlow(t *testing.T) {
	store := newFakeStore()
	seedUser(store, "owner", "Asha")
	buddyB := seedUser(store, "b", "Brij")
	buddyC := seedUser(store, "c", "Chen")
	seedPlan(store, "trip", "owner")

	requestSvc := travelrequests.NewService(store)
	reviewSvc := NewService(store)
	ctx := context.Background()

	// both buddies ask to join
	reqB, err := requestSvc.CreateRequest(ctx, "b", "trip")
	require.NoError(t, err)
	reqC, err := requestSvc.CreateRequest(ctx, "c", "trip")
	require.NoError(t, err)

	// reviewing before acceptance is rejected
	_, err = reviewSvc.CreateReview(ctx, "owner@example.com", CreateReviewInput{
		TravelPlanID: "trip", ReviewedID: "b", Rating: "5",
	})
	require.Error(t, err)

	// owner accepts both
	resB, err := requestSvc.Respond(ctx, "owner", reqB.RequestID, "ACCEPTED")
	require.NoError(t, err)
	require.False(t, resB.AlreadyProcessed)
	_, err = requestSvc.Respond(ctx, "owner", reqC.RequestID, "ACCEPTED")
	require.NoError(t, err)

	// owner reviews buddy B
	_, err = reviewSvc.CreateReview(ctx, "owner@example.com", CreateReviewInput{
		TravelPlanID: "trip", ReviewedID: "b", Rating: "4.5", Comment: "solid travel buddy",
	})
	require.NoError(t, err)
	assert.InDelta(t, 4.5, buddyB.Rating, 1e-9)

	// and buddy C; each mean is per reviewed user
	_, err = reviewSvc.CreateReview(ctx, "owner@example.com", CreateReviewInput{
		TravelPlanID: "trip", ReviewedID: "c", Rating: "3.5",
	})
	require.NoError(t, err)
	assert.InDelta(t, 3.5, buddyC.Rating, 1e-9)
	assert.InDelta(t, 4.5, buddyB.Rating, 1e-9)

	// a late repeat response to B's request is the soft outcome
	repeat, err := requestSvc.Respond(ctx, "owner", reqB.RequestID, "REJECTED")
	require.NoError(t, err)
	assert.True(t, repeat.AlreadyProcessed)
	assert.Equal(t, models.RequestAccepted, repeat.Request.Status)
}
