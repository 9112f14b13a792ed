package course

import (
	"context"

	"github.com/openstax/rope/internal/moodle"
)

// LocalShortnameIndex is the slice of the repository the checker needs.
type LocalShortnameIndex interface {
	ShortnameExists(ctx context.Context, shortname string) (bool, error)
}

// RemoteCourseFinder is the slice of the Moodle client the checker needs.
type RemoteCourseFinder interface {
	GetCourseByShortname(ctx context.Context, shortname string) ([]moodle.Course, error)
}

// ShortnameIsFree reports whether no existing build and no existing Moodle
// course already uses the candidate. Both authorities are consulted on every
// call; a remote failure propagates rather than being treated as free.
func ShortnameIsFree(ctx context.Context, local LocalShortnameIndex, remote RemoteCourseFinder, shortname string) (bool, error) {
	exists, err := local.ShortnameExists(ctx, shortname)
	if err != nil {
		return false, err
	}

	courses, err := remote.GetCourseByShortname(ctx, shortname)
	if err != nil {
		return false, err
	}

	return !exists && len(courses) == 0, nil
}
