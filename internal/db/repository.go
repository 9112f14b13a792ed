package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/openstax/rope/internal/model"
	roperrors "github.com/openstax/rope/pkg/errors"
)

type Repository interface {
	GetUserByEmail(ctx context.Context, email string) (*model.UserAccount, error)
	GetAllUsers(ctx context.Context) ([]model.UserAccount, error)
	CreateUser(ctx context.Context, user model.UserRequest) (*model.UserAccount, error)
	UpdateUser(ctx context.Context, user model.UserAccount) (*model.UserAccount, error)
	DeleteUser(ctx context.Context, id int64) (int64, error)

	GetDistricts(ctx context.Context, activeOnly bool) ([]model.SchoolDistrict, error)
	GetDistrictByName(ctx context.Context, name string) (*model.SchoolDistrict, error)
	GetDistrictByID(ctx context.Context, id int64) (*model.SchoolDistrict, error)
	CreateDistrict(ctx context.Context, district model.DistrictRequest) (*model.SchoolDistrict, error)
	UpdateDistrict(ctx context.Context, district model.SchoolDistrict) (*model.SchoolDistrict, error)

	GetMoodleSettings(ctx context.Context) ([]model.MoodleSetting, error)
	GetMoodleSettingByName(ctx context.Context, name string) (*model.MoodleSetting, error)
	CreateMoodleSetting(ctx context.Context, setting model.SettingRequest) (*model.MoodleSetting, error)
	UpdateMoodleSetting(ctx context.Context, setting model.MoodleSetting) (*model.MoodleSetting, error)

	CreateCourseBuild(ctx context.Context, build model.CourseBuild) (*model.CourseBuild, error)
	GetCourseBuild(ctx context.Context, id int64) (*model.CourseBuild, error)
	GetCourseBuilds(ctx context.Context) ([]model.CourseBuild, error)
	ShortnameExists(ctx context.Context, shortname string) (bool, error)
	ClaimCourseBuild(ctx context.Context, id int64) (bool, error)
	SetCourseBuildStatus(ctx context.Context, id int64, status model.BuildStatus) error
	CompleteCourseBuild(ctx context.Context, id int64, courseID int64, enrollmentURL, enrollmentKey string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (*model.UserAccount, error) {
	query := `SELECT id, email, is_manager, is_admin, created_at, updated_at FROM user_account WHERE email = $1`

	var user model.UserAccount
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.IsManager, &user.IsAdmin,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, roperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *repository) GetAllUsers(ctx context.Context) ([]model.UserAccount, error) {
	query := `SELECT id, email, is_manager, is_admin, created_at, updated_at FROM user_account ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.UserAccount
	for rows.Next() {
		var user model.UserAccount
		err := rows.Scan(&user.ID, &user.Email, &user.IsManager, &user.IsAdmin,
			&user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func (r *repository) CreateUser(ctx context.Context, user model.UserRequest) (*model.UserAccount, error) {
	query := `INSERT INTO user_account (email, is_manager, is_admin, created_at, updated_at)
			  VALUES ($1, $2, $3, NOW(), NOW())
			  RETURNING id, email, is_manager, is_admin, created_at, updated_at`

	var created model.UserAccount
	err := r.db.QueryRowContext(ctx, query, user.Email, user.IsManager, user.IsAdmin).Scan(
		&created.ID, &created.Email, &created.IsManager, &created.IsAdmin,
		&created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) UpdateUser(ctx context.Context, user model.UserAccount) (*model.UserAccount, error) {
	query := `UPDATE user_account SET email = $1, is_manager = $2, is_admin = $3, updated_at = NOW()
			  WHERE id = $4
			  RETURNING id, email, is_manager, is_admin, created_at, updated_at`

	var updated model.UserAccount
	err := r.db.QueryRowContext(ctx, query, user.Email, user.IsManager, user.IsAdmin, user.ID).Scan(
		&updated.ID, &updated.Email, &updated.IsManager, &updated.IsAdmin,
		&updated.CreatedAt, &updated.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, roperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *repository) DeleteUser(ctx context.Context, id int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_account WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *repository) GetDistricts(ctx context.Context, activeOnly bool) ([]model.SchoolDistrict, error) {
	query := `SELECT id, name, active, created_at, updated_at FROM school_district`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var districts []model.SchoolDistrict
	for rows.Next() {
		var district model.SchoolDistrict
		err := rows.Scan(&district.ID, &district.Name, &district.Active,
			&district.CreatedAt, &district.UpdatedAt)
		if err != nil {
			return nil, err
		}
		districts = append(districts, district)
	}

	return districts, rows.Err()
}

func (r *repository) GetDistrictByName(ctx context.Context, name string) (*model.SchoolDistrict, error) {
	query := `SELECT id, name, active, created_at, updated_at FROM school_district WHERE name = $1`

	var district model.SchoolDistrict
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&district.ID, &district.Name, &district.Active,
		&district.CreatedAt, &district.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, roperrors.ErrDistrictNotFound
	}
	if err != nil {
		return nil, err
	}

	return &district, nil
}

func (r *repository) GetDistrictByID(ctx context.Context, id int64) (*model.SchoolDistrict, error) {
	query := `SELECT id, name, active, created_at, updated_at FROM school_district WHERE id = $1`

	var district model.SchoolDistrict
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&district.ID, &district.Name, &district.Active,
		&district.CreatedAt, &district.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, roperrors.ErrDistrictNotFound
	}
	if err != nil {
		return nil, err
	}

	return &district, nil
}

func (r *repository) CreateDistrict(ctx context.Context, district model.DistrictRequest) (*model.SchoolDistrict, error) {
	query := `INSERT INTO school_district (name, active, created_at, updated_at)
			  VALUES ($1, $2, NOW(), NOW())
			  RETURNING id, name, active, created_at, updated_at`

	var created model.SchoolDistrict
	err := r.db.QueryRowContext(ctx, query, district.Name, district.Active).Scan(
		&created.ID, &created.Name, &created.Active,
		&created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) UpdateDistrict(ctx context.Context, district model.SchoolDistrict) (*model.SchoolDistrict, error) {
	query := `UPDATE school_district SET name = $1, active = $2, updated_at = NOW()
			  WHERE id = $3
			  RETURNING id, name, active, created_at, updated_at`

	var updated model.SchoolDistrict
	err := r.db.QueryRowContext(ctx, query, district.Name, district.Active, district.ID).Scan(
		&updated.ID, &updated.Name, &updated.Active,
		&updated.CreatedAt, &updated.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, roperrors.ErrDistrictNotFound
	}
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *repository) GetMoodleSettings(ctx context.Context) ([]model.MoodleSetting, error) {
	query := `SELECT id, name, value, created_at, updated_at FROM moodle_settings ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []model.MoodleSetting
	for rows.Next() {
		var setting model.MoodleSetting
		err := rows.Scan(&setting.ID, &setting.Name, &setting.Value,
			&setting.CreatedAt, &setting.UpdatedAt)
		if err != nil {
			return nil, err
		}
		settings = append(settings, setting)
	}

	return settings, rows.Err()
}

func (r *repository) GetMoodleSettingByName(ctx context.Context, name string) (*model.MoodleSetting, error) {
	query := `SELECT id, name, value, created_at, updated_at FROM moodle_settings WHERE name = $1`

	var setting model.MoodleSetting
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&setting.ID, &setting.Name, &setting.Value,
		&setting.CreatedAt, &setting.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &setting, nil
}

func (r *repository) CreateMoodleSetting(ctx context.Context, setting model.SettingRequest) (*model.MoodleSetting, error) {
	query := `INSERT INTO moodle_settings (name, value, created_at, updated_at)
			  VALUES ($1, $2, NOW(), NOW())
			  RETURNING id, name, value, created_at, updated_at`

	var created model.MoodleSetting
	err := r.db.QueryRowContext(ctx, query, setting.Name, setting.Value).Scan(
		&created.ID, &created.Name, &created.Value,
		&created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) UpdateMoodleSetting(ctx context.Context, setting model.MoodleSetting) (*model.MoodleSetting, error) {
	query := `UPDATE moodle_settings SET name = $1, value = $2, updated_at = NOW()
			  WHERE id = $3
			  RETURNING id, name, value, created_at, updated_at`

	var updated model.MoodleSetting
	err := r.db.QueryRowContext(ctx, query, setting.Name, setting.Value, setting.ID).Scan(
		&updated.ID, &updated.Name, &updated.Value,
		&updated.CreatedAt, &updated.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *repository) CreateCourseBuild(ctx context.Context, build model.CourseBuild) (*model.CourseBuild, error) {
	query := `INSERT INTO course_build (instructor_firstname, instructor_lastname, instructor_email,
				school_district, academic_year, academic_year_short, base_course_id, course_category,
				course_name, course_shortname, creator, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
			  RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		build.InstructorFirstName, build.InstructorLastName, build.InstructorEmail,
		build.SchoolDistrictID, build.AcademicYear, build.AcademicYearShort,
		build.BaseCourseID, build.CourseCategory, build.CourseName,
		build.CourseShortname, build.CreatorID, build.Status,
	).Scan(&build.ID, &build.CreatedAt, &build.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &build, nil
}

func (r *repository) GetCourseBuild(ctx context.Context, id int64) (*model.CourseBuild, error) {
	query := `SELECT id, instructor_firstname, instructor_lastname, instructor_email,
				school_district, academic_year, academic_year_short, base_course_id, course_category,
				course_name, course_shortname, creator, status,
				course_id, course_enrollment_url, course_enrollment_key, created_at, updated_at
			  FROM course_build WHERE id = $1`

	var build model.CourseBuild
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&build.ID, &build.InstructorFirstName, &build.InstructorLastName, &build.InstructorEmail,
		&build.SchoolDistrictID, &build.AcademicYear, &build.AcademicYearShort,
		&build.BaseCourseID, &build.CourseCategory, &build.CourseName,
		&build.CourseShortname, &build.CreatorID, &build.Status,
		&build.CourseID, &build.CourseEnrollmentURL, &build.CourseEnrollmentKey,
		&build.CreatedAt, &build.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, roperrors.ErrBuildNotFound
	}
	if err != nil {
		return nil, err
	}

	return &build, nil
}

func (r *repository) GetCourseBuilds(ctx context.Context) ([]model.CourseBuild, error) {
	query := `SELECT id, instructor_firstname, instructor_lastname, instructor_email,
				school_district, academic_year, academic_year_short, base_course_id, course_category,
				course_name, course_shortname, creator, status,
				course_id, course_enrollment_url, course_enrollment_key, created_at, updated_at
			  FROM course_build ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var builds []model.CourseBuild
	for rows.Next() {
		var build model.CourseBuild
		err := rows.Scan(
			&build.ID, &build.InstructorFirstName, &build.InstructorLastName, &build.InstructorEmail,
			&build.SchoolDistrictID, &build.AcademicYear, &build.AcademicYearShort,
			&build.BaseCourseID, &build.CourseCategory, &build.CourseName,
			&build.CourseShortname, &build.CreatorID, &build.Status,
			&build.CourseID, &build.CourseEnrollmentURL, &build.CourseEnrollmentKey,
			&build.CreatedAt, &build.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		builds = append(builds, build)
	}

	return builds, rows.Err()
}

func (r *repository) ShortnameExists(ctx context.Context, shortname string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM course_build WHERE course_shortname = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, shortname).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ClaimCourseBuild moves a build from created to processing. The conditional
// update makes the claim exclusive: a second worker racing on the same build
// sees zero rows affected and must back off.
func (r *repository) ClaimCourseBuild(ctx context.Context, id int64) (bool, error) {
	query := `UPDATE course_build SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, model.BuildStatusProcessing, id, model.BuildStatusCreated)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *repository) SetCourseBuildStatus(ctx context.Context, id int64, status model.BuildStatus) error {
	query := `UPDATE course_build SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}

func (r *repository) CompleteCourseBuild(ctx context.Context, id int64, courseID int64, enrollmentURL, enrollmentKey string) error {
	query := `UPDATE course_build
			  SET status = $1, course_id = $2, course_enrollment_url = $3, course_enrollment_key = $4, updated_at = NOW()
			  WHERE id = $5`
	_, err := r.db.ExecContext(ctx, query, model.BuildStatusCompleted, courseID, enrollmentURL, enrollmentKey, id)
	return err
}
