package model

import "time"

// Setting names the course build pipeline requires before accepting requests.
const (
	SettingAcademicYear      = "academic_year"
	SettingAcademicYearShort = "academic_year_short"
	SettingCourseCategory    = "course_category"
	SettingBaseCourseID      = "base_course_id"
)

type MoodleSetting struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Value     string    `json:"value" db:"value"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
