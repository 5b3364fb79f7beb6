package service

import (
	"fmt"

	"github.com/noah-isme/course-gpa-api/internal/models"
	appErrors "github.com/noah-isme/course-gpa-api/pkg/errors"
)

const (
	MinCredit = 1
	MaxCredit = 4

	lowCreditThreshold = 2
	mediumCredit       = 3
	highCredit         = 4
)

// Credit band multipliers.
const (
	LowCourseGPA    = 3
	MediumCourseGPA = 5
	HighCourseGPA   = 10
)

// CreditMultiplier returns the GPA multiplier of the band the credit falls in.
func CreditMultiplier(credit int) (int, error) {
	switch {
	case credit >= MinCredit && credit <= lowCreditThreshold:
		return LowCourseGPA, nil
	case credit == mediumCredit:
		return MediumCourseGPA, nil
	case credit == highCredit:
		return HighCourseGPA, nil
	}
	return 0, appErrors.Validation(fmt.Sprintf("Invalid credit value: %d", credit))
}

// TotalGPA computes coefficient * credit * band multiplier.
func TotalGPA(course models.Course) (int, error) {
	multiplier, err := CreditMultiplier(course.Credit)
	if err != nil {
		return 0, err
	}
	return course.Grade.Coefficient * course.Credit * multiplier, nil
}
