package models

import "time"

// Assignment is one graded unit of work retrieved from the grade portal.
type Assignment struct {
	ID             string     `db:"id" json:"id"`
	StudentID      string     `db:"student_id" json:"-"`
	CourseID       string     `db:"course_id" json:"course_id"`
	Name           string     `db:"name" json:"name"`
	Description    string     `db:"description" json:"description,omitempty"`
	Category       string     `db:"category" json:"category"`
	DueDate        *time.Time `db:"due_date" json:"due_date,omitempty"`
	EarnedPoints   Score      `db:"earned_points" json:"earned_points"`
	PossiblePoints Score      `db:"possible_points" json:"possible_points"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// CategoryWeights maps a grading category to its relative weight. Categories
// without an entry weigh zero.
type CategoryWeights map[string]float64

// CategoryWeight is the persisted form of a single CategoryWeights entry.
type CategoryWeight struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"-"`
	CourseID  string    `db:"course_id" json:"course_id"`
	Category  string    `db:"category" json:"category"`
	Weight    float64   `db:"weight" json:"weight"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CategorySummary aggregates the assignments of one category.
type CategorySummary struct {
	Average        float64
	Weight         float64
	RawPointsSum   float64
	RawPossibleSum float64
}

// GradeSummary is the derived result of a course total computation.
type GradeSummary struct {
	CourseTotal float64
	Categories  map[string]CategorySummary
}

// SemesterAverages holds the two semester grades derived from report-card
// marks. A nil value means the semester has not been graded yet.
type SemesterAverages struct {
	SM1 *float64 `json:"sm1"`
	SM2 *float64 `json:"sm2"`
}

// GPAResult is the shape returned by a GPA converter.
type GPAResult struct {
	Unweighted *float64 `json:"unweighted"`
	Weighted   *float64 `json:"weighted"`
}
