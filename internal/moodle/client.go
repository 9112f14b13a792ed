package moodle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/openstax/rope/internal/config"
	"github.com/openstax/rope/internal/logger"
	roperrors "github.com/openstax/rope/pkg/errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Moodle web-service functions the client calls. Role lookup and the
// enrolment-key update are provided by the companion local plugin.
const (
	funcGetUsersByField        = "core_user_get_users_by_field"
	funcGetCoursesByField      = "core_course_get_courses_by_field"
	funcDuplicateCourse        = "core_course_duplicate_course"
	funcEnrolUsers             = "enrol_manual_enrol_users"
	funcGetRoleByShortname     = "local_rope_get_role_by_shortname"
	funcSetSelfEnrolmentKey    = "local_rope_set_self_enrolment_key"
	webserviceRestEndpointPath = "/webservice/rest/server.php"
)

type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
}

type Role struct {
	ID        int64  `json:"id"`
	Shortname string `json:"shortname"`
}

type Course struct {
	ID        int64  `json:"id"`
	FullName  string `json:"fullname"`
	Shortname string `json:"shortname"`
}

type CreateCourseParams struct {
	BaseCourseID     int64
	Name             string
	Shortname        string
	CategoryID       int64
	InstructorRoleID int64
	InstructorUserID int64
	StudentRoleID    int64
}

type NewCourse struct {
	CourseID     int64  `json:"course_id"`
	EnrolmentURL string `json:"course_enrolment_url"`
	EnrolmentKey string `json:"course_enrolment_key"`
}

// Client is the capability surface of the remote Moodle instance the build
// pipeline consumes.
type Client interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetRoleByShortname(ctx context.Context, shortname string) (*Role, error)
	GetCourseByShortname(ctx context.Context, shortname string) ([]Course, error)
	CreateCourse(ctx context.Context, params CreateCourseParams) (*NewCourse, error)
}

type restClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(cfg *config.Config) Client {
	timeout := cfg.Moodle.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &restClient{
		baseURL: strings.TrimRight(cfg.Moodle.URL, "/"),
		token:   cfg.Moodle.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: logger.Get(),
	}
}

// wsError is Moodle's in-band failure shape: HTTP 200 with an exception body.
type wsError struct {
	Exception string `json:"exception"`
	ErrorCode string `json:"errorcode"`
	Message   string `json:"message"`
}

func (c *restClient) call(ctx context.Context, wsfunction string, params url.Values, out interface{}) error {
	form := url.Values{}
	form.Set("wstoken", c.token)
	form.Set("wsfunction", wsfunction)
	form.Set("moodlewsrestformat", "json")
	for key, values := range params {
		for _, value := range values {
			form.Add(key, value)
		}
	}

	endpoint := c.baseURL + webserviceRestEndpointPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.log.Debug().Str("wsfunction", wsfunction).Msg("Calling Moodle web service")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("moodle request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned HTTP %d", roperrors.ErrMoodleAPIError, wsfunction, resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fmt.Errorf("failed to decode moodle response: %w", err)
	}

	var wsErr wsError
	if err := json.Unmarshal(raw, &wsErr); err == nil && wsErr.Exception != "" {
		return fmt.Errorf("%w: %s: %s (%s)", roperrors.ErrMoodleAPIError, wsfunction, wsErr.Message, wsErr.ErrorCode)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to unmarshal %s response: %w", wsfunction, err)
		}
	}
	return nil
}

// GetUserByEmail returns nil when no Moodle account matches the email.
func (c *restClient) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	params := url.Values{}
	params.Set("field", "email")
	params.Set("values[0]", email)

	var users []User
	if err := c.call(ctx, funcGetUsersByField, params, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func (c *restClient) GetRoleByShortname(ctx context.Context, shortname string) (*Role, error) {
	params := url.Values{}
	params.Set("shortname", shortname)

	var role Role
	if err := c.call(ctx, funcGetRoleByShortname, params, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

func (c *restClient) GetCourseByShortname(ctx context.Context, shortname string) ([]Course, error) {
	params := url.Values{}
	params.Set("field", "shortname")
	params.Set("value", shortname)

	var result struct {
		Courses []Course `json:"courses"`
	}
	if err := c.call(ctx, funcGetCoursesByField, params, &result); err != nil {
		return nil, err
	}
	return result.Courses, nil
}

// CreateCourse duplicates the base course, enrols the instructor, and locks
// self enrolment behind a generated key. The sequence is not atomic; any
// failure surfaces to the caller and the build is marked failed.
func (c *restClient) CreateCourse(ctx context.Context, p CreateCourseParams) (*NewCourse, error) {
	duplicateParams := url.Values{}
	duplicateParams.Set("courseid", strconv.FormatInt(p.BaseCourseID, 10))
	duplicateParams.Set("fullname", p.Name)
	duplicateParams.Set("shortname", p.Shortname)
	duplicateParams.Set("categoryid", strconv.FormatInt(p.CategoryID, 10))

	var duplicated struct {
		ID int64 `json:"id"`
	}
	if err := c.call(ctx, funcDuplicateCourse, duplicateParams, &duplicated); err != nil {
		return nil, err
	}

	enrolParams := url.Values{}
	enrolParams.Set("enrolments[0][roleid]", strconv.FormatInt(p.InstructorRoleID, 10))
	enrolParams.Set("enrolments[0][userid]", strconv.FormatInt(p.InstructorUserID, 10))
	enrolParams.Set("enrolments[0][courseid]", strconv.FormatInt(duplicated.ID, 10))
	if err := c.call(ctx, funcEnrolUsers, enrolParams, nil); err != nil {
		return nil, err
	}

	enrolmentKey := generateEnrolmentKey()
	keyParams := url.Values{}
	keyParams.Set("courseid", strconv.FormatInt(duplicated.ID, 10))
	keyParams.Set("enrolkey", enrolmentKey)
	keyParams.Set("roleid", strconv.FormatInt(p.StudentRoleID, 10))
	if err := c.call(ctx, funcSetSelfEnrolmentKey, keyParams, nil); err != nil {
		return nil, err
	}

	return &NewCourse{
		CourseID:     duplicated.ID,
		EnrolmentURL: fmt.Sprintf("%s/enrol/index.php?id=%d", c.baseURL, duplicated.ID),
		EnrolmentKey: enrolmentKey,
	}, nil
}

func generateEnrolmentKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
