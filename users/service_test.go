package users

import (
	"context"
	"testing"

	"tripmate/apperrors"
	"tripmate/models"
	"tripmate/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeStore struct {
	users          map[string]*models.User
	lastListFilter bson.M
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]*models.User{}}
}

func (f *fakeStore) FindUserByID(_ context.Context, userID string) (*models.User, error) {
	if user, ok := f.users[userID]; ok {
		return user, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeStore) UpdateUserFields(_ context.Context, userID string, set bson.M) error {
	user, ok := f.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if v, ok := set["name"].(string); ok {
		user.Name = v
	}
	if v, ok := set["bio"].(string); ok {
		user.Bio = v
	}
	if v, ok := set["contactNumber"].(string); ok {
		user.ContactNumber = v
	}
	if v, ok := set["travelInterests"].([]string); ok {
		user.TravelInterests = v
	}
	if v, ok := set["visitedCountries"].([]string); ok {
		user.VisitedCountries = v
	}
	if v, ok := set["status"].(string); ok {
		user.Status = v
	}
	return nil
}

func (f *fakeStore) ListUsers(_ context.Context, filter bson.M, skip, limit int64, sort bson.D) ([]models.User, error) {
	f.lastListFilter = filter
	var out []models.User
	for _, user := range f.users {
		out = append(out, *user)
	}
	return out, nil
}

func (f *fakeStore) CountUsers(_ context.Context, filter bson.M) (int64, error) {
	return int64(len(f.users)), nil
}

func seed(f *fakeStore, id string) *models.User {
	user := &models.User{
		UserID: id,
		Name:   "Asha",
		Email:  id + "@example.com",
		Role:   models.RoleUser,
		Status: models.StatusActive,
	}
	f.users[id] = user
	return user
}

func TestUpdateProfileMergesInterestsInsteadOfReplacing(t *testing.T) {
	store := newFakeStore()
	user := seed(store, "u1")
	user.TravelInterests = []string{"hiking", "food"}
	user.VisitedCountries = []string{"Japan"}
	svc := NewService(store)

	updated, err := svc.UpdateProfile(context.Background(), "u1", UpdateProfileInput{
		TravelInterests:  []string{"food", "diving"},
		VisitedCountries: []string{"Japan", "Portugal"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"hiking", "food", "diving"}, updated.TravelInterests)
	assert.Equal(t, []string{"Japan", "Portugal"}, updated.VisitedCountries)
}

func TestUpdateProfileScalarFieldsReplaceWhenNonEmpty(t *testing.T) {
	store := newFakeStore()
	seed(store, "u1")
	svc := NewService(store)

	updated, err := svc.UpdateProfile(context.Background(), "u1", UpdateProfileInput{
		Bio:  "mountains over beaches",
		Name: "  ",
	})
	require.NoError(t, err)

	assert.Equal(t, "mountains over beaches", updated.Bio)
	// blank name does not clobber the stored one
	assert.Equal(t, "Asha", updated.Name)
}

func TestUpdateProfileNoChangesIsANoop(t *testing.T) {
	store := newFakeStore()
	seed(store, "u1")
	svc := NewService(store)

	updated, err := svc.UpdateProfile(context.Background(), "u1", UpdateProfileInput{})
	require.NoError(t, err)
	assert.Equal(t, "Asha", updated.Name)
}

func TestDeactivateAdminOnly(t *testing.T) {
	store := newFakeStore()
	seed(store, "u1")
	svc := NewService(store)

	err := svc.Deactivate(context.Background(), models.RoleUser, "u1")
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)

	require.NoError(t, svc.Deactivate(context.Background(), models.RoleAdmin, "u1"))
	assert.Equal(t, models.StatusDeactivated, store.users["u1"].Status)

	// repeat deactivation is rejected
	err = svc.Deactivate(context.Background(), models.RoleAdmin, "u1")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
}

func TestListTravelersScopesToActiveUsers(t *testing.T) {
	store := newFakeStore()
	seed(store, "u1")
	svc := NewService(store)

	_, meta, err := svc.ListTravelers(context.Background(), "", nil, query.Options{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), meta.Total)

	assert.Equal(t, models.RoleUser, store.lastListFilter["role"])
	assert.Equal(t, models.StatusActive, store.lastListFilter["status"])
}

func TestListTravelersSearchAddsOrPredicate(t *testing.T) {
	store := newFakeStore()
	seed(store, "u1")
	svc := NewService(store)

	_, _, err := svc.ListTravelers(context.Background(), "asha", nil, query.Options{Page: 1, Limit: 10})
	require.NoError(t, err)

	and, ok := store.lastListFilter["$and"].([]bson.M)
	require.True(t, ok)
	require.Len(t, and, 2)
	assert.Contains(t, and[1], "$or")
}
