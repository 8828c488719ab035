package travelplans

import (
	"context"

	"tripmate/apperrors"
	"tripmate/models"
	"tripmate/query"
	"tripmate/utils"

	"go.mongodb.org/mongo-driver/bson"
)

// MatchParams are the optional criteria a traveler matches against. Zero
// values mean "no constraint".
type MatchParams struct {
	Destination    string
	TravelType     string
	StartDateTime  string
	EndDateTime    string
	TravelInterest string
}

// BuildMatchFilter assembles the matching predicate: public plans owned by
// someone else, narrowed by the given criteria. ownerIDs carries the result
// of resolving the travel-interest filter; when interestFiltered is true an
// empty ownerIDs list matches nothing.
func BuildMatchFilter(userID string, params MatchParams, ownerIDs []string, interestFiltered bool) (bson.M, error) {
	conds := []bson.M{
		{"visibility": models.VisibilityPublic},
		{"userid": bson.M{"$ne": userID}},
	}

	if params.Destination != "" {
		conds = append(conds, query.Contains("destination", params.Destination))
	}
	if params.TravelType != "" {
		if matched, ok := query.MatchEnum(models.TravelTypeValues, params.TravelType); ok {
			conds = append(conds, bson.M{"travelType": matched})
		}
	}
	if params.StartDateTime != "" {
		start, err := utils.ParseDateTime(params.StartDateTime)
		if err != nil {
			return nil, err
		}
		conds = append(conds, bson.M{"startDateTime": bson.M{"$gte": start}})
	}
	if params.EndDateTime != "" {
		end, err := utils.ParseDateTime(params.EndDateTime)
		if err != nil {
			return nil, err
		}
		conds = append(conds, bson.M{"endDateTime": bson.M{"$lte": end}})
	}
	if interestFiltered {
		if len(ownerIDs) == 0 {
			// No owner shares the interest; match nothing.
			ownerIDs = []string{}
		}
		conds = append(conds, bson.M{"userid": bson.M{"$in": ownerIDs}})
	}

	return query.And(conds...), nil
}

// MatchedTravelers finds other people's public plans that fit the caller's
// criteria. The travel-interest filter is resolved to plan owners first.
func (s *Service) MatchedTravelers(ctx context.Context, userID string, params MatchParams, opts query.Options) ([]models.TravelPlan, models.Meta, error) {
	var ownerIDs []string
	interestFiltered := params.TravelInterest != ""
	if interestFiltered {
		ids, err := s.Store.FindUserIDsByInterest(ctx, params.TravelInterest)
		if err != nil {
			return nil, models.Meta{}, err
		}
		ownerIDs = ids
	}

	filter, err := BuildMatchFilter(userID, params, ownerIDs, interestFiltered)
	if err != nil {
		return nil, models.Meta{}, apperrors.BadRequest(err.Error())
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
