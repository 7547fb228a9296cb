package grading

import "github.com/noah-isme/gradeview-api/internal/models"

// UpdateCourse returns a copy of course with SM1 and SM2 recomputed from its
// report-card marks. Every other field is carried over unchanged.
func UpdateCourse(course models.Course) models.Course {
	averages := ComputeSemesterAverages(course.RC1, course.RC2, course.RC3, course.RC4)
	updated := course
	updated.SM1 = averages.SM1
	updated.SM2 = averages.SM2
	return updated
}

// UpdateCourses applies UpdateCourse to every course. The result is a new
// slice of the same length and order; the input slice is left untouched.
func UpdateCourses(courses []models.Course) []models.Course {
	updated := make([]models.Course, len(courses))
	for i := range courses {
		updated[i] = UpdateCourse(courses[i])
	}
	return updated
}
