package course

import (
	"context"
	"errors"
	"testing"

	"github.com/openstax/rope/internal/moodle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocalIndex struct {
	exists bool
	err    error
	calls  int
}

func (f *fakeLocalIndex) ShortnameExists(_ context.Context, _ string) (bool, error) {
	f.calls++
	return f.exists, f.err
}

type fakeCourseFinder struct {
	courses []moodle.Course
	err     error
	calls   int
}

func (f *fakeCourseFinder) GetCourseByShortname(_ context.Context, _ string) ([]moodle.Course, error) {
	f.calls++
	return f.courses, f.err
}

func TestShortnameIsFree(t *testing.T) {
	tests := []struct {
		name        string
		localExists bool
		remote      []moodle.Course
		want        bool
	}{
		{name: "free everywhere", want: true},
		{name: "taken locally", localExists: true, want: false},
		{name: "taken remotely", remote: []moodle.Course{{ID: 7, Shortname: "Alg1 FS AY24"}}, want: false},
		{name: "taken both", localExists: true, remote: []moodle.Course{{ID: 7}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local := &fakeLocalIndex{exists: tt.localExists}
			remote := &fakeCourseFinder{courses: tt.remote}

			free, err := ShortnameIsFree(context.Background(), local, remote, "Alg1 FS AY24")
			require.NoError(t, err)
			assert.Equal(t, tt.want, free)

			// Both authorities are consulted on every check.
			assert.Equal(t, 1, local.calls)
			assert.Equal(t, 1, remote.calls)
		})
	}
}

func TestShortnameIsFreeRemoteErrorPropagates(t *testing.T) {
	local := &fakeLocalIndex{}
	remote := &fakeCourseFinder{err: errors.New("moodle unreachable")}

	_, err := ShortnameIsFree(context.Background(), local, remote, "Alg1 FS AY24")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "moodle unreachable")
}
