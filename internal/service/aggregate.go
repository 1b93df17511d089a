package service

import "github.com/iliyamo/store-rating/internal/model"

// RatingAggregate is the reduction of one store's ratings.
type RatingAggregate struct {
	Average      float64
	ViewerRating *int
}

// Aggregate computes the arithmetic mean of ratings and picks out the
// viewer's own value.  An empty slice averages to 0, never NaN.  A nil
// viewerID, or a viewer who has not rated, yields a nil ViewerRating.
func Aggregate(ratings []model.Rating, viewerID *uint64) RatingAggregate {
	var out RatingAggregate
	if len(ratings) == 0 {
		return out
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Value
		if viewerID != nil && out.ViewerRating == nil && r.UserID == *viewerID {
			v := r.Value
			out.ViewerRating = &v
		}
	}
	out.Average = float64(sum) / float64(len(ratings))
	return out
}

// summarize attaches the aggregate to a store row.
func summarize(s model.Store, ratings []model.Rating, viewerID *uint64) model.StoreSummary {
	agg := Aggregate(ratings, viewerID)
	return model.StoreSummary{
		ID:            s.ID,
		Name:          s.Name,
		Email:         s.Email,
		Address:       s.Address,
		OwnerUserID:   s.OwnerUserID,
		CreatedAt:     s.CreatedAt,
		OverallRating: agg.Average,
		MyRating:      agg.ViewerRating,
	}
}
