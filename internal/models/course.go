package models

import "time"

// Course is a student's course record together with its report-card marks
// and the semester averages derived from them.
type Course struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Name      string    `db:"name" json:"name"`
	Teacher   string    `db:"teacher" json:"teacher,omitempty"`
	Period    string    `db:"period" json:"period,omitempty"`
	Room      string    `db:"room" json:"room,omitempty"`
	RC1       Mark      `db:"rc1" json:"rc1"`
	RC2       Mark      `db:"rc2" json:"rc2"`
	RC3       Mark      `db:"rc3" json:"rc3"`
	RC4       Mark      `db:"rc4" json:"rc4"`
	SM1       *float64  `db:"sm1" json:"sm1"`
	SM2       *float64  `db:"sm2" json:"sm2"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
