package fees

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduleFixture() []Month {
	return []Month{
		{ID: "m3", Name: "March", Number: 3, Fee: 500},
		{ID: "m1", Name: "January", Number: 1, Fee: 500},
		{ID: "m4", Name: "April", Number: 4, Fee: 600},
		{ID: "m2", Name: "February", Number: 2, Fee: 500},
	}
}

func TestApplicableMonthsSortedAndBounded(t *testing.T) {
	months := ApplicableMonths(Enrollment{StartingMonthID: "m2"}, scheduleFixture())
	require.Len(t, months, 3)
	assert.Equal(t, []string{"m2", "m3", "m4"}, monthIDs(months))
	for i := 1; i < len(months); i++ {
		assert.LessOrEqual(t, months[i-1].Number, months[i].Number)
	}
}

func TestApplicableMonthsWithEndingBound(t *testing.T) {
	enrollment := Enrollment{StartingMonthID: "m1", EndingMonthID: "m3"}
	months := ApplicableMonths(enrollment, scheduleFixture())
	assert.Equal(t, []string{"m1", "m2", "m3"}, monthIDs(months))
}

func TestApplicableMonthsUnresolvableStart(t *testing.T) {
	assert.Empty(t, ApplicableMonths(Enrollment{StartingMonthID: "missing"}, scheduleFixture()))
	assert.Empty(t, ApplicableMonths(Enrollment{}, scheduleFixture()))
}

func TestApplicableMonthsUnresolvableEndMeansOpenEnded(t *testing.T) {
	enrollment := Enrollment{StartingMonthID: "m1", EndingMonthID: "missing"}
	months := ApplicableMonths(enrollment, scheduleFixture())
	assert.Len(t, months, 4)
}

func TestApplicableMonthsToleratesDuplicateNumbers(t *testing.T) {
	schedule := []Month{
		{ID: "a", Number: 1, Fee: 100},
		{ID: "b", Number: 2, Fee: 100},
		{ID: "c", Number: 2, Fee: 150},
		{ID: "d", Number: 5, Fee: 100},
	}
	months := ApplicableMonths(Enrollment{StartingMonthID: "b"}, schedule)
	// stable sort keeps b before c
	assert.Equal(t, []string{"b", "c", "d"}, monthIDs(months))
}

func monthIDs(months []Month) []string {
	ids := make([]string, len(months))
	for i, m := range months {
		ids[i] = m.ID
	}
	return ids
}
