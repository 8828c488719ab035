package db

import (
	"context"
	"time"

	"tripmate/models"
	"tripmate/query"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ---------- Users ----------

func (s *Store) InsertUser(ctx context.Context, user *models.User) error {
	_, err := s.Users.InsertOne(ctx, user)
	return err
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.Users.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) FindUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.Users.FindOne(ctx, bson.M{"userid": userID}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) UpdateUserFields(ctx context.Context, userID string, set bson.M) error {
	set["updatedAt"] = time.Now().UTC()
	res, err := s.Users.UpdateOne(ctx, bson.M{"userid": userID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context, filter bson.M, skip, limit int64, sort bson.D) ([]models.User, error) {
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(sort)
	cur, err := s.Users.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) CountUsers(ctx context.Context, filter bson.M) (int64, error) {
	return s.Users.CountDocuments(ctx, filter)
}

// FindUserIDsByInterest resolves users whose travelInterests contain the
// given value, case-insensitively. The matching engine uses this to turn an
// interest filter into an owner-id predicate.
func (s *Store) FindUserIDsByInterest(ctx context.Context, interest string) ([]string, error) {
	filter := query.ExactInsensitive("travelInterests", interest)
	cur, err := s.Users.Find(ctx, filter, options.Find().SetProjection(bson.M{"userid": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var doc struct {
			UserID string `bson:"userid"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.UserID)
	}
	return ids, cur.Err()
}

func (s *Store) SetUserRating(ctx context.Context, userID string, rating float64) error {
	res, err := s.Users.UpdateOne(ctx, bson.M{"userid": userID}, bson.M{"$set": bson.M{"rating": rating}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ---------- Travel plans ----------

func (s *Store) InsertPlan(ctx context.Context, plan *models.TravelPlan) error {
	_, err := s.Plans.InsertOne(ctx, plan)
	return err
}

func (s *Store) FindPlanByID(ctx context.Context, planID string) (*models.TravelPlan, error) {
	var plan models.TravelPlan
	if err := s.Plans.FindOne(ctx, bson.M{"planid": planID}).Decode(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (s *Store) UpdatePlanFields(ctx context.Context, planID string, set bson.M) (*models.TravelPlan, error) {
	set["updatedAt"] = time.Now().UTC()
	res := s.Plans.FindOneAndUpdate(ctx,
		bson.M{"planid": planID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.TravelPlan
	if err := res.Decode(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) ListPlans(ctx context.Context, filter bson.M, skip, limit int64, sort bson.D) ([]models.TravelPlan, error) {
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(sort)
	cur, err := s.Plans.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var plans []models.TravelPlan
	if err := cur.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (s *Store) CountPlans(ctx context.Context, filter bson.M) (int64, error) {
	return s.Plans.CountDocuments(ctx, filter)
}

func (s *Store) DeletePlan(ctx context.Context, planID string) error {
	res, err := s.Plans.DeleteOne(ctx, bson.M{"planid": planID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ---------- Travel requests ----------

func (s *Store) InsertRequest(ctx context.Context, req *models.TravelRequest) error {
	_, err := s.Requests.InsertOne(ctx, req)
	return err
}

func (s *Store) FindRequestByID(ctx context.Context, requestID string) (*models.TravelRequest, error) {
	var req models.TravelRequest
	if err := s.Requests.FindOne(ctx, bson.M{"requestid": requestID}).Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Store) HasPendingRequest(ctx context.Context, planID, requesterID string) (bool, error) {
	count, err := s.Requests.CountDocuments(ctx, bson.M{
		"planid":      planID,
		"requesterid": requesterID,
		"status":      models.RequestPending,
	})
	return count > 0, err
}

// SettlePendingRequest moves a request out of PENDING. The status filter
// makes the transition a compare-and-swap: once settled, a request matches
// nothing and concurrent responders get ErrNoDocuments instead of a second
// mutation.
func (s *Store) SettlePendingRequest(ctx context.Context, requestID, status string) (*models.TravelRequest, error) {
	res := s.Requests.FindOneAndUpdate(ctx,
		bson.M{"requestid": requestID, "status": models.RequestPending},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.TravelRequest
	if err := res.Decode(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) ListRequestsByRequester(ctx context.Context, requesterID string, skip, limit int64) ([]models.TravelRequest, int64, error) {
	filter := bson.M{"requesterid": requesterID}

	var requests []models.TravelRequest
	var total int64

	// Page and total are read in one transaction so the meta count cannot
	// drift from the page contents.
	err := s.WithTransaction(ctx, func(tc context.Context) error {
		opts := options.Find().SetSkip(skip).SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cur, err := s.Requests.Find(tc, filter, opts)
		if err != nil {
			return err
		}
		defer cur.Close(tc)
		if err := cur.All(tc, &requests); err != nil {
			return err
		}

		total, err = s.Requests.CountDocuments(tc, filter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

func (s *Store) ListRequestsByPlan(ctx context.Context, planID string) ([]models.TravelRequest, error) {
	cur, err := s.Requests.Find(ctx, bson.M{"planid": planID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var requests []models.TravelRequest
	if err := cur.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *Store) DeleteRequestsByPlan(ctx context.Context, planID string) error {
	_, err := s.Requests.DeleteMany(ctx, bson.M{"planid": planID})
	return err
}

// ---------- Reviews ----------

func (s *Store) InsertReview(ctx context.Context, review *models.Review) error {
	_, err := s.Reviews.InsertOne(ctx, review)
	return err
}

func (s *Store) CountReviewsForPair(ctx context.Context, planID, reviewerID, reviewedID string) (int64, error) {
	return s.Reviews.CountDocuments(ctx, bson.M{
		"travelPlanId": planID,
		"reviewerId":   reviewerID,
		"reviewedId":   reviewedID,
	})
}

// AverageRating recomputes the full mean over every review of the target.
// Returns 0 when the target has no reviews.
func (s *Store) AverageRating(ctx context.Context, reviewedID string) (float64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"reviewedId": reviewedID}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id": nil,
			"avg": bson.M{"$avg": "$rating"},
		}}},
	}
	cur, err := s.Reviews.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var results []struct {
		Avg float64 `bson:"avg"`
	}
	if err := cur.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Avg, nil
}

func (s *Store) ListReviews(ctx context.Context, filter bson.M, skip, limit int64, sort bson.D) ([]models.Review, error) {
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(sort)
	cur, err := s.Reviews.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var reviews []models.Review
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *Store) CountReviews(ctx context.Context, filter bson.M) (int64, error) {
	return s.Reviews.CountDocuments(ctx, filter)
}

func (s *Store) ListTestimonials(ctx context.Context) ([]models.Review, error) {
	filter := bson.M{
		"rating":  bson.M{"$gte": 4.0},
		"comment": bson.M{"$exists": true, "$ne": ""},
	}
	opts := options.Find().SetSort(bson.D{{Key: "rating", Value: -1}})
	cur, err := s.Reviews.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var reviews []models.Review
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *Store) DeleteReviewsByPlan(ctx context.Context, planID string) error {
	_, err := s.Reviews.DeleteMany(ctx, bson.M{"travelPlanId": planID})
	return err
}
