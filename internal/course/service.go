package course

import (
	"context"
	"fmt"
	"strconv"

	"github.com/openstax/rope/internal/db"
	"github.com/openstax/rope/internal/logger"
	"github.com/openstax/rope/internal/model"
	"github.com/openstax/rope/internal/moodle"
	roperrors "github.com/openstax/rope/pkg/errors"

	"github.com/rs/zerolog"
)

// Enqueuer hands a work item to the build queue.
type Enqueuer interface {
	EnqueueBuildWorkItem(ctx context.Context, item model.BuildWorkItem) error
}

// BuildService accepts course build requests: it derives a unique shortname,
// persists the build in created status, and enqueues a work item for the
// build worker.
type BuildService struct {
	repo     db.Repository
	moodle   moodle.Client
	enqueuer Enqueuer
	log      zerolog.Logger
}

func NewBuildService(repo db.Repository, moodleClient moodle.Client, enqueuer Enqueuer) *BuildService {
	return &BuildService{
		repo:     repo,
		moodle:   moodleClient,
		enqueuer: enqueuer,
		log:      logger.Get(),
	}
}

// RequestBuild runs the synchronous half of the pipeline. It returns the
// created record immediately; fulfillment happens asynchronously.
//
// If the enqueue fails after the insert there is no compensating delete: the
// row stays in created status with no work item, and has to be re-injected
// by an operator.
func (s *BuildService) RequestBuild(ctx context.Context, req model.CourseBuildRequest, creatorEmail string) (*model.CourseBuildResponse, error) {
	academicYear, err := s.requiredSetting(ctx, model.SettingAcademicYear)
	if err != nil {
		return nil, err
	}
	academicYearShort, err := s.requiredSetting(ctx, model.SettingAcademicYearShort)
	if err != nil {
		return nil, err
	}
	courseCategory, err := s.requiredSetting(ctx, model.SettingCourseCategory)
	if err != nil {
		return nil, err
	}
	baseCourse, err := s.requiredSetting(ctx, model.SettingBaseCourseID)
	if err != nil {
		return nil, err
	}

	categoryID, err := strconv.ParseInt(courseCategory, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("setting %s is not an integer: %w", model.SettingCourseCategory, err)
	}
	baseCourseID, err := strconv.ParseInt(baseCourse, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("setting %s is not an integer: %w", model.SettingBaseCourseID, err)
	}

	courseName := Name(req.InstructorFirstName, req.InstructorLastName, academicYear)

	shortname := Shortname(req.InstructorFirstName, req.InstructorLastName, academicYearShort, 0)
	for nonce := 1; ; nonce++ {
		free, err := ShortnameIsFree(ctx, s.repo, s.moodle, shortname)
		if err != nil {
			return nil, err
		}
		if free {
			break
		}
		shortname = Shortname(req.InstructorFirstName, req.InstructorLastName, academicYearShort, nonce)
	}

	creator, err := s.repo.GetUserByEmail(ctx, creatorEmail)
	if err != nil {
		return nil, err
	}
	district, err := s.repo.GetDistrictByName(ctx, req.SchoolDistrict)
	if err != nil {
		return nil, err
	}

	build := model.CourseBuild{
		InstructorFirstName: req.InstructorFirstName,
		InstructorLastName:  req.InstructorLastName,
		InstructorEmail:     req.InstructorEmail,
		SchoolDistrictID:    district.ID,
		AcademicYear:        academicYear,
		AcademicYearShort:   academicYearShort,
		BaseCourseID:        baseCourseID,
		CourseCategory:      categoryID,
		CourseName:          courseName,
		CourseShortname:     shortname,
		CreatorID:           creator.ID,
		Status:              model.BuildStatusCreated,
	}

	created, err := s.repo.CreateCourseBuild(ctx, build)
	if err != nil {
		return nil, err
	}

	if err := s.enqueuer.EnqueueBuildWorkItem(ctx, model.BuildWorkItem{CourseBuildID: created.ID}); err != nil {
		s.log.Error().Err(err).
			Int64("course_build_id", created.ID).
			Msg("Build record created but work item enqueue failed")
		return nil, err
	}

	s.log.Info().
		Int64("course_build_id", created.ID).
		Str("course_shortname", created.CourseShortname).
		Msg("Course build requested")

	return &model.CourseBuildResponse{
		InstructorFirstName: created.InstructorFirstName,
		InstructorLastName:  created.InstructorLastName,
		InstructorEmail:     created.InstructorEmail,
		SchoolDistrict:      district.Name,
		AcademicYear:        created.AcademicYear,
		AcademicYearShort:   created.AcademicYearShort,
		CourseName:          created.CourseName,
		CourseShortname:     created.CourseShortname,
		Creator:             creatorEmail,
		Status:              created.Status,
	}, nil
}

func (s *BuildService) requiredSetting(ctx context.Context, name string) (string, error) {
	setting, err := s.repo.GetMoodleSettingByName(ctx, name)
	if err != nil {
		return "", err
	}
	if setting == nil {
		return "", roperrors.ErrMissingMoodleSettings
	}
	return setting.Value, nil
}
