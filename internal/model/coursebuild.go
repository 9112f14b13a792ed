package model

import "time"

type BuildStatus string

const (
	BuildStatusCreated    BuildStatus = "created"
	BuildStatusProcessing BuildStatus = "processing"
	BuildStatusCompleted  BuildStatus = "completed"
	BuildStatusFailed     BuildStatus = "failed"
)

// Terminal reports whether the worker may still advance a build in this state.
func (s BuildStatus) Terminal() bool {
	return s == BuildStatusCompleted || s == BuildStatusFailed
}

// CourseBuild tracks one course-creation request end to end. The remote
// output fields stay nil until the build reaches completed.
type CourseBuild struct {
	ID                  int64       `json:"id" db:"id"`
	InstructorFirstName string      `json:"instructor_firstname" db:"instructor_firstname"`
	InstructorLastName  string      `json:"instructor_lastname" db:"instructor_lastname"`
	InstructorEmail     string      `json:"instructor_email" db:"instructor_email"`
	SchoolDistrictID    int64       `json:"school_district_id" db:"school_district"`
	AcademicYear        string      `json:"academic_year" db:"academic_year"`
	AcademicYearShort   string      `json:"academic_year_short" db:"academic_year_short"`
	BaseCourseID        int64       `json:"base_course_id" db:"base_course_id"`
	CourseCategory      int64       `json:"course_category" db:"course_category"`
	CourseName          string      `json:"course_name" db:"course_name"`
	CourseShortname     string      `json:"course_shortname" db:"course_shortname"`
	CreatorID           int64       `json:"creator" db:"creator"`
	Status              BuildStatus `json:"status" db:"status"`
	CourseID            *int64      `json:"course_id" db:"course_id"`
	CourseEnrollmentURL *string     `json:"course_enrollment_url" db:"course_enrollment_url"`
	CourseEnrollmentKey *string     `json:"course_enrollment_key" db:"course_enrollment_key"`
	CreatedAt           time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at" db:"updated_at"`
}
