package models

// Grade is the coefficient and note attached to a course.
type Grade struct {
	Coefficient int    `json:"coefficient"`
	Note        string `json:"note"`
}

// Course represents a credited academic course.
type Course struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Credit int    `json:"credit"`
	Grade  Grade  `json:"grade"`
}

// CourseResult pairs a stored course with its computed total GPA.
type CourseResult struct {
	Course   Course `json:"course"`
	TotalGPA int    `json:"totalGpa"`
}
