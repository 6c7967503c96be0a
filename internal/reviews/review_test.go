package reviews

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)

	assert.NotNil(t, summary.Reviews)
	assert.Empty(t, summary.Reviews)
	assert.Zero(t, summary.AverageRating)
	assert.Zero(t, summary.TotalReviews)
}

func TestSummarize_AverageRoundedToOneDecimal(t *testing.T) {
	list := []*Review{
		{Rating: 5},
		{Rating: 4},
		{Rating: 4},
	}

	summary := Summarize(list)

	assert.Equal(t, 4.3, summary.AverageRating)
	assert.Equal(t, 3, summary.TotalReviews)
	assert.Len(t, summary.Reviews, 3)
}

func TestSummarize_SingleReview(t *testing.T) {
	summary := Summarize([]*Review{{Rating: 2}})

	assert.Equal(t, 2.0, summary.AverageRating)
	assert.Equal(t, 1, summary.TotalReviews)
}
