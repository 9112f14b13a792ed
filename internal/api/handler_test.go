package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/openstax/rope/internal/config"
	"github.com/openstax/rope/internal/course"
	"github.com/openstax/rope/internal/db"
	"github.com/openstax/rope/internal/model"
	"github.com/openstax/rope/internal/moodle"
	"github.com/openstax/rope/internal/session"
	roperrors "github.com/openstax/rope/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	db.Repository

	users     map[string]*model.UserAccount
	districts []model.SchoolDistrict
	settings  map[string]string

	deletedUserID int64
	createdBuilds []model.CourseBuild
}

func (f *fakeRepo) GetUserByEmail(_ context.Context, email string) (*model.UserAccount, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, roperrors.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeRepo) GetDistricts(_ context.Context, activeOnly bool) ([]model.SchoolDistrict, error) {
	if !activeOnly {
		return f.districts, nil
	}
	var active []model.SchoolDistrict
	for _, district := range f.districts {
		if district.Active {
			active = append(active, district)
		}
	}
	return active, nil
}

func (f *fakeRepo) GetDistrictByName(_ context.Context, name string) (*model.SchoolDistrict, error) {
	for _, district := range f.districts {
		if district.Name == name {
			d := district
			return &d, nil
		}
	}
	return nil, roperrors.ErrDistrictNotFound
}

func (f *fakeRepo) GetMoodleSettingByName(_ context.Context, name string) (*model.MoodleSetting, error) {
	value, ok := f.settings[name]
	if !ok {
		return nil, nil
	}
	return &model.MoodleSetting{Name: name, Value: value}, nil
}

func (f *fakeRepo) ShortnameExists(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (f *fakeRepo) CreateCourseBuild(_ context.Context, build model.CourseBuild) (*model.CourseBuild, error) {
	build.ID = int64(len(f.createdBuilds) + 1)
	f.createdBuilds = append(f.createdBuilds, build)
	return &build, nil
}

func (f *fakeRepo) DeleteUser(_ context.Context, id int64) (int64, error) {
	if id == f.deletedUserID {
		return 1, nil
	}
	return 0, nil
}

type fakeVerifier struct {
	emails map[string]string
}

func (f *fakeVerifier) VerifyIDToken(_ context.Context, token string) (string, error) {
	email, ok := f.emails[token]
	if !ok {
		return "", fmt.Errorf("invalid Google token")
	}
	return email, nil
}

type fakeMoodle struct {
	moodle.Client

	users map[string]*moodle.User
}

func (f *fakeMoodle) GetUserByEmail(_ context.Context, email string) (*moodle.User, error) {
	return f.users[email], nil
}

func (f *fakeMoodle) GetCourseByShortname(_ context.Context, _ string) ([]moodle.Course, error) {
	return nil, nil
}

type fakeEnqueuer struct {
	items []model.BuildWorkItem
}

func (f *fakeEnqueuer) EnqueueBuildWorkItem(_ context.Context, item model.BuildWorkItem) error {
	f.items = append(f.items, item)
	return nil
}

type testEnv struct {
	router   *gin.Engine
	repo     *fakeRepo
	sessions *session.MemoryStore
	cfg      *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &fakeRepo{
		users: map[string]*model.UserAccount{
			"admin@rice.edu":   {ID: 1, Email: "admin@rice.edu", IsAdmin: true},
			"manager@rice.edu": {ID: 2, Email: "manager@rice.edu", IsManager: true},
			"viewer@rice.edu":  {ID: 3, Email: "viewer@rice.edu"},
		},
		districts: []model.SchoolDistrict{
			{ID: 9, Name: "snowfall_isd", Active: true},
			{ID: 10, Name: "retired_isd", Active: false},
		},
		settings: map[string]string{
			model.SettingAcademicYear:      "AY 2024",
			model.SettingAcademicYearShort: "AY24",
			model.SettingCourseCategory:    "21",
			model.SettingBaseCourseID:      "100",
		},
		deletedUserID: 3,
	}

	cfg := &config.Config{}
	cfg.Session.CookieName = "ROPE.session"
	cfg.Session.MaxAge = time.Hour

	sessions := session.NewMemoryStore(cfg.Session.MaxAge)
	moodleClient := &fakeMoodle{users: map[string]*moodle.User{
		"fsaint@rice.edu": {ID: 77, FirstName: "Franklin", LastName: "Saint", Email: "fsaint@rice.edu"},
	}}
	buildService := course.NewBuildService(repo, moodleClient, &fakeEnqueuer{})
	verifier := &fakeVerifier{emails: map[string]string{
		"good-token":     "manager@rice.edu",
		"unknown-member": "stranger@rice.edu",
	}}

	handler := NewHandler(repo, buildService, moodleClient, sessions, verifier, cfg)

	router := gin.New()
	SetupRoutes(router, handler)

	return &testEnv{router: router, repo: repo, sessions: sessions, cfg: cfg}
}

func (e *testEnv) loginAs(t *testing.T, email string) string {
	t.Helper()
	user := e.repo.users[email]
	require.NotNil(t, user)

	sessionID := "session-" + email
	require.NoError(t, e.sessions.Set(context.Background(), sessionID, model.SessionUser{
		Email:     user.Email,
		IsManager: user.IsManager,
		IsAdmin:   user.IsAdmin,
	}))
	return sessionID
}

func (e *testEnv) do(method, path, sessionID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: e.cfg.Session.CookieName, Value: sessionID})
	}

	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, req)
	return recorder
}

func TestGoogleLogin(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(http.MethodPost, "/session/", "", `{"token": "good-token"}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	var user model.SessionUser
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &user))
	assert.Equal(t, "manager@rice.edu", user.Email)
	assert.True(t, user.IsManager)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, env.cfg.Session.CookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestGoogleLoginRejectsBadToken(t *testing.T) {
	env := newTestEnv(t)
	recorder := env.do(http.MethodPost, "/session/", "", `{"token": "forged"}`)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestGoogleLoginRejectsUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	recorder := env.do(http.MethodPost, "/session/", "", `{"token": "unknown-member"}`)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestGetCurrentUserRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(http.MethodGet, "/user/current/", "", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	sessionID := env.loginAs(t, "viewer@rice.edu")
	recorder = env.do(http.MethodGet, "/user/current/", sessionID, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var user model.SessionUser
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &user))
	assert.Equal(t, "viewer@rice.edu", user.Email)
}

func TestGetDistrictsFiltersInactiveForNonAdmins(t *testing.T) {
	env := newTestEnv(t)

	sessionID := env.loginAs(t, "viewer@rice.edu")
	recorder := env.do(http.MethodGet, "/admin/settings/district", sessionID, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var districts []model.SchoolDistrict
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &districts))
	require.Len(t, districts, 1)
	assert.Equal(t, "snowfall_isd", districts[0].Name)

	adminSession := env.loginAs(t, "admin@rice.edu")
	recorder = env.do(http.MethodGet, "/admin/settings/district", adminSession, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &districts))
	assert.Len(t, districts, 2)
}

func TestCreateCourseBuildRequiresManager(t *testing.T) {
	env := newTestEnv(t)
	body := `{
		"instructor_firstname": "Franklin",
		"instructor_lastname": "Saint",
		"instructor_email": "fsaint@rice.edu",
		"school_district": "snowfall_isd"
	}`

	sessionID := env.loginAs(t, "viewer@rice.edu")
	recorder := env.do(http.MethodPost, "/moodle/course/build/", sessionID, body)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	managerSession := env.loginAs(t, "manager@rice.edu")
	recorder = env.do(http.MethodPost, "/moodle/course/build/", managerSession, body)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response model.CourseBuildResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "Alg1 FS AY24", response.CourseShortname)
	assert.Equal(t, "Algebra 1 - Franklin Saint (AY 2024)", response.CourseName)
	assert.Equal(t, model.BuildStatusCreated, response.Status)
	assert.Equal(t, "manager@rice.edu", response.Creator)
}

func TestCreateCourseBuildUnknownDistrict(t *testing.T) {
	env := newTestEnv(t)
	managerSession := env.loginAs(t, "manager@rice.edu")

	recorder := env.do(http.MethodPost, "/moodle/course/build/", managerSession, `{
		"instructor_firstname": "Franklin",
		"instructor_lastname": "Saint",
		"instructor_email": "fsaint@rice.edu",
		"school_district": "nowhere_isd"
	}`)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestGetMoodleUser(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.loginAs(t, "viewer@rice.edu")

	recorder := env.do(http.MethodGet, "/moodle/user/?email=fsaint@rice.edu", sessionID, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var user model.MoodleUser
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &user))
	assert.Equal(t, "Franklin", user.FirstName)

	recorder = env.do(http.MethodGet, "/moodle/user/?email=nobody@rice.edu", sessionID, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "null", strings.TrimSpace(recorder.Body.String()))
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	adminSession := env.loginAs(t, "admin@rice.edu")

	recorder := env.do(http.MethodDelete, "/user/3/", adminSession, "")
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = env.do(http.MethodDelete, "/user/99/", adminSession, "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestUserCRUDRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	managerSession := env.loginAs(t, "manager@rice.edu")

	recorder := env.do(http.MethodGet, "/user/", managerSession, "")
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = env.do(http.MethodDelete, "/user/3/", managerSession, "")
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}
