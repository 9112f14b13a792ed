package course

import (
	"context"
	"errors"
	"testing"

	"github.com/openstax/rope/internal/db"
	"github.com/openstax/rope/internal/model"
	"github.com/openstax/rope/internal/moodle"
	roperrors "github.com/openstax/rope/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo implements the slices of db.Repository the build service touches.
type fakeRepo struct {
	db.Repository

	settings  map[string]string
	taken     map[string]bool
	users     map[string]*model.UserAccount
	districts map[string]*model.SchoolDistrict

	createdBuilds []model.CourseBuild
}

func (f *fakeRepo) GetMoodleSettingByName(_ context.Context, name string) (*model.MoodleSetting, error) {
	value, ok := f.settings[name]
	if !ok {
		return nil, nil
	}
	return &model.MoodleSetting{Name: name, Value: value}, nil
}

func (f *fakeRepo) ShortnameExists(_ context.Context, shortname string) (bool, error) {
	return f.taken[shortname], nil
}

func (f *fakeRepo) GetUserByEmail(_ context.Context, email string) (*model.UserAccount, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, roperrors.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeRepo) GetDistrictByName(_ context.Context, name string) (*model.SchoolDistrict, error) {
	district, ok := f.districts[name]
	if !ok {
		return nil, roperrors.ErrDistrictNotFound
	}
	return district, nil
}

func (f *fakeRepo) CreateCourseBuild(_ context.Context, build model.CourseBuild) (*model.CourseBuild, error) {
	build.ID = int64(len(f.createdBuilds) + 1)
	f.createdBuilds = append(f.createdBuilds, build)
	return &build, nil
}

// fakeMoodle only answers shortname lookups; the build service never calls
// anything else.
type fakeMoodle struct {
	moodle.Client

	coursesByShortname map[string][]moodle.Course
	err                error
}

func (f *fakeMoodle) GetCourseByShortname(_ context.Context, shortname string) ([]moodle.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.coursesByShortname[shortname], nil
}

type fakeEnqueuer struct {
	items []model.BuildWorkItem
	err   error
}

func (f *fakeEnqueuer) EnqueueBuildWorkItem(_ context.Context, item model.BuildWorkItem) error {
	if f.err != nil {
		return f.err
	}
	f.items = append(f.items, item)
	return nil
}

func newTestRepo() *fakeRepo {
	return &fakeRepo{
		settings: map[string]string{
			model.SettingAcademicYear:      "AY 2024",
			model.SettingAcademicYearShort: "AY24",
			model.SettingCourseCategory:    "21",
			model.SettingBaseCourseID:      "100",
		},
		taken: map[string]bool{},
		users: map[string]*model.UserAccount{
			"manager@rice.edu": {ID: 3, Email: "manager@rice.edu", IsManager: true},
		},
		districts: map[string]*model.SchoolDistrict{
			"snowfall_isd": {ID: 9, Name: "snowfall_isd", Active: true},
		},
	}
}

func TestRequestBuild(t *testing.T) {
	repo := newTestRepo()
	enqueuer := &fakeEnqueuer{}
	service := NewBuildService(repo, &fakeMoodle{}, enqueuer)

	response, err := service.RequestBuild(context.Background(), model.CourseBuildRequest{
		InstructorFirstName: "Franklin",
		InstructorLastName:  "Saint",
		InstructorEmail:     "fsaint@rice.edu",
		SchoolDistrict:      "snowfall_isd",
	}, "manager@rice.edu")
	require.NoError(t, err)

	assert.Equal(t, "Algebra 1 - Franklin Saint (AY 2024)", response.CourseName)
	assert.Equal(t, "Alg1 FS AY24", response.CourseShortname)
	assert.Equal(t, "snowfall_isd", response.SchoolDistrict)
	assert.Equal(t, "AY 2024", response.AcademicYear)
	assert.Equal(t, "AY24", response.AcademicYearShort)
	assert.Equal(t, "manager@rice.edu", response.Creator)
	assert.Equal(t, model.BuildStatusCreated, response.Status)
	assert.Nil(t, response.CourseID)
	assert.Nil(t, response.CourseEnrollmentURL)
	assert.Nil(t, response.CourseEnrollmentKey)

	require.Len(t, repo.createdBuilds, 1)
	build := repo.createdBuilds[0]
	assert.Equal(t, int64(9), build.SchoolDistrictID)
	assert.Equal(t, int64(3), build.CreatorID)
	assert.Equal(t, int64(100), build.BaseCourseID)
	assert.Equal(t, int64(21), build.CourseCategory)
	assert.Equal(t, model.BuildStatusCreated, build.Status)

	require.Len(t, enqueuer.items, 1)
	assert.Equal(t, int64(1), enqueuer.items[0].CourseBuildID)
}

func TestRequestBuildNonceOnLocalConflict(t *testing.T) {
	repo := newTestRepo()
	repo.taken["Alg1 FS AY24"] = true
	service := NewBuildService(repo, &fakeMoodle{}, &fakeEnqueuer{})

	response, err := service.RequestBuild(context.Background(), model.CourseBuildRequest{
		InstructorFirstName: "Freya",
		InstructorLastName:  "Santiago",
		InstructorEmail:     "freya@rice.edu",
		SchoolDistrict:      "snowfall_isd",
	}, "manager@rice.edu")
	require.NoError(t, err)
	assert.Equal(t, "Alg1 FS1 AY24", response.CourseShortname)
}

func TestRequestBuildNonceOnRemoteConflict(t *testing.T) {
	repo := newTestRepo()
	moodleClient := &fakeMoodle{coursesByShortname: map[string][]moodle.Course{
		"Alg1 RT AY24":  {{ID: 51, Shortname: "Alg1 RT AY24"}},
		"Alg1 RT1 AY24": {{ID: 52, Shortname: "Alg1 RT1 AY24"}},
	}}
	service := NewBuildService(repo, moodleClient, &fakeEnqueuer{})

	response, err := service.RequestBuild(context.Background(), model.CourseBuildRequest{
		InstructorFirstName: "Reed",
		InstructorLastName:  "Thompson",
		InstructorEmail:     "rthompson@rice.edu",
		SchoolDistrict:      "snowfall_isd",
	}, "manager@rice.edu")
	require.NoError(t, err)
	assert.Equal(t, "Alg1 RT2 AY24", response.CourseShortname)
}

func TestRequestBuildMissingSetting(t *testing.T) {
	repo := newTestRepo()
	delete(repo.settings, model.SettingBaseCourseID)
	enqueuer := &fakeEnqueuer{}
	service := NewBuildService(repo, &fakeMoodle{}, enqueuer)

	_, err := service.RequestBuild(context.Background(), model.CourseBuildRequest{
		InstructorFirstName: "Franklin",
		InstructorLastName:  "Saint",
		InstructorEmail:     "fsaint@rice.edu",
		SchoolDistrict:      "snowfall_isd",
	}, "manager@rice.edu")
	require.ErrorIs(t, err, roperrors.ErrMissingMoodleSettings)
	assert.Empty(t, repo.createdBuilds)
	assert.Empty(t, enqueuer.items)
}

func TestRequestBuildUnknownDistrict(t *testing.T) {
	repo := newTestRepo()
	enqueuer := &fakeEnqueuer{}
	service := NewBuildService(repo, &fakeMoodle{}, enqueuer)

	_, err := service.RequestBuild(context.Background(), model.CourseBuildRequest{
		InstructorFirstName: "Franklin",
		InstructorLastName:  "Saint",
		InstructorEmail:     "fsaint@rice.edu",
		SchoolDistrict:      "nowhere_isd",
	}, "manager@rice.edu")
	require.ErrorIs(t, err, roperrors.ErrDistrictNotFound)
	assert.Empty(t, repo.createdBuilds)
	assert.Empty(t, enqueuer.items)
}

func TestRequestBuildRemoteCheckFailure(t *testing.T) {
	repo := newTestRepo()
	service := NewBuildService(repo, &fakeMoodle{err: errors.New("connection refused")}, &fakeEnqueuer{})

	_, err := service.RequestBuild(context.Background(), model.CourseBuildRequest{
		InstructorFirstName: "Franklin",
		InstructorLastName:  "Saint",
		InstructorEmail:     "fsaint@rice.edu",
		SchoolDistrict:      "snowfall_isd",
	}, "manager@rice.edu")
	require.Error(t, err)
	assert.Empty(t, repo.createdBuilds, "no record may be created when the remote check fails")
}
