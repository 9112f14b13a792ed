package course

import "fmt"

// Every build derives from the one Algebra 1 template course.
const (
	SubjectName = "Algebra 1"
	SubjectTag  = "Alg1"
)

// Name renders the long course display name, e.g.
// "Algebra 1 - Franklin Saint (AY 2024)". Instructor casing is preserved.
func Name(firstName, lastName, academicYear string) string {
	return fmt.Sprintf("%s - %s %s (%s)", SubjectName, firstName, lastName, academicYear)
}

// Shortname renders the compact unique identifier, e.g. "Alg1 FS AY24".
// A nonce greater than zero is appended to the initials to disambiguate
// collisions: "Alg1 FS1 AY24".
func Shortname(firstName, lastName, academicYearShort string, nonce int) string {
	initials := initial(firstName) + initial(lastName)
	if nonce > 0 {
		return fmt.Sprintf("%s %s%d %s", SubjectTag, initials, nonce, academicYearShort)
	}
	return fmt.Sprintf("%s %s %s", SubjectTag, initials, academicYearShort)
}

func initial(name string) string {
	for _, r := range name {
		return string(r)
	}
	return ""
}
