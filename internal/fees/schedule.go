// Package fees implements the fee-allocation and payment-ledger engine:
// applicable-month resolution, per-month payment aggregation, ordered greedy
// allocation and payment status classification. Everything here is a pure
// function of its inputs; persistence and transport live elsewhere.
package fees

import "sort"

// Month is the engine's view of one billable month of a course.
type Month struct {
	ID     string
	Name   string
	Number int
	Fee    float64
}

// Enrollment bounds a student's financial responsibility within a course.
// An empty EndingMonthID means the enrollment is open-ended.
type Enrollment struct {
	CourseID        string
	StartingMonthID string
	EndingMonthID   string
}

// ApplicableMonths returns the months of the enrollment's course the student
// is responsible for, sorted ascending by month number. An enrollment whose
// starting month does not resolve contributes no months; the same applies to
// an unset starting month. Duplicate or gapped month numbers are tolerated,
// the sort is stable so equal numbers keep their input order.
func ApplicableMonths(enrollment Enrollment, monthsOfCourse []Month) []Month {
	start, ok := findMonth(monthsOfCourse, enrollment.StartingMonthID)
	if !ok {
		return nil
	}

	end, hasEnd := findMonth(monthsOfCourse, enrollment.EndingMonthID)

	applicable := make([]Month, 0, len(monthsOfCourse))
	for _, m := range monthsOfCourse {
		if m.Number < start.Number {
			continue
		}
		if hasEnd && m.Number > end.Number {
			continue
		}
		applicable = append(applicable, m)
	}

	sort.SliceStable(applicable, func(i, j int) bool {
		return applicable[i].Number < applicable[j].Number
	})
	return applicable
}

func findMonth(months []Month, id string) (Month, bool) {
	if id == "" {
		return Month{}, false
	}
	for _, m := range months {
		if m.ID == id {
			return m, true
		}
	}
	return Month{}, false
}
