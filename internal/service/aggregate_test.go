package service

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/store-rating/internal/model"
)

func ratingsOf(values ...int) []model.Rating {
	out := make([]model.Rating, len(values))
	for i, v := range values {
		out[i] = model.Rating{ID: uint64(i + 1), StoreID: 1, UserID: uint64(100 + i), Value: v}
	}
	return out
}

func TestAggregate_Mean(t *testing.T) {
	agg := Aggregate(ratingsOf(5, 3, 4), nil)
	assert.Equal(t, 4.0, agg.Average)
	assert.Nil(t, agg.ViewerRating)
}

func TestAggregate_EmptyIsZero(t *testing.T) {
	agg := Aggregate(nil, nil)
	assert.Equal(t, 0.0, agg.Average)
	assert.Nil(t, agg.ViewerRating)

	viewer := uint64(7)
	agg = Aggregate([]model.Rating{}, &viewer)
	assert.Equal(t, 0.0, agg.Average)
	assert.Nil(t, agg.ViewerRating)
}

func TestAggregate_ViewerRating(t *testing.T) {
	rs := ratingsOf(2, 5, 1)
	viewer := uint64(101)
	agg := Aggregate(rs, &viewer)
	require.NotNil(t, agg.ViewerRating)
	assert.Equal(t, 5, *agg.ViewerRating)

	stranger := uint64(999)
	assert.Nil(t, Aggregate(rs, &stranger).ViewerRating)
}

func TestAggregate_BoundsAndOrderIndependence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(30)
		values := make([]int, n)
		for j := range values {
			values[j] = 1 + rng.Intn(5)
		}
		rs := ratingsOf(values...)
		avg := Aggregate(rs, nil).Average
		assert.GreaterOrEqual(t, avg, 1.0)
		assert.LessOrEqual(t, avg, 5.0)

		rng.Shuffle(len(rs), func(a, b int) { rs[a], rs[b] = rs[b], rs[a] })
		assert.InDelta(t, avg, Aggregate(rs, nil).Average, 1e-9)
	}
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		name                string
		page, limit         int
		wantPage, wantLimit int
		wantOffset          int
	}{
		{"defaults", 0, 0, 1, 10, 0},
		{"second page", 2, 10, 2, 10, 10},
		{"negative", -3, -1, 1, 10, 0},
		{"capped", 3, 500, 3, MaxLimit, 2 * MaxLimit},
		{"huge page", math.MaxInt, 100, math.MaxInt/100 + 1, 100, math.MaxInt / 100 * 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, l, o := normalizePage(tc.page, tc.limit)
			assert.GreaterOrEqual(t, o, 0)
			assert.Equal(t, tc.wantPage, p)
			assert.Equal(t, tc.wantLimit, l)
			assert.Equal(t, tc.wantOffset, o)
		})
	}
}
