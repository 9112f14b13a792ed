package model

// BuildWorkItem is the queue message referencing one course build.
type BuildWorkItem struct {
	CourseBuildID int64 `json:"course_build_id"`
}

type CourseBuildRequest struct {
	InstructorFirstName string `json:"instructor_firstname" binding:"required"`
	InstructorLastName  string `json:"instructor_lastname" binding:"required"`
	InstructorEmail     string `json:"instructor_email" binding:"required,email"`
	SchoolDistrict      string `json:"school_district" binding:"required"`
}

// CourseBuildResponse echoes the created build back to the caller. The
// creator field carries the creator's email, not the row id.
type CourseBuildResponse struct {
	InstructorFirstName string      `json:"instructor_firstname"`
	InstructorLastName  string      `json:"instructor_lastname"`
	InstructorEmail     string      `json:"instructor_email"`
	SchoolDistrict      string      `json:"school_district"`
	AcademicYear        string      `json:"academic_year"`
	AcademicYearShort   string      `json:"academic_year_short"`
	CourseName          string      `json:"course_name"`
	CourseShortname     string      `json:"course_shortname"`
	CourseID            *int64      `json:"course_id"`
	CourseEnrollmentURL *string     `json:"course_enrollment_url"`
	CourseEnrollmentKey *string     `json:"course_enrollment_key"`
	Creator             string      `json:"creator"`
	Status              BuildStatus `json:"status"`
}

type GoogleLoginData struct {
	Token string `json:"token" binding:"required"`
}

type UserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	IsManager bool   `json:"is_manager"`
	IsAdmin   bool   `json:"is_admin"`
}

type DistrictRequest struct {
	Name   string `json:"name" binding:"required"`
	Active bool   `json:"active"`
}

type SettingRequest struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// MoodleUser is the trimmed lookup result returned by GET /moodle/user/.
type MoodleUser struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}
