// Package lapack exposes the linear algebra routines consumed by the
// analysis library. Routines follow the Fortran calling convention: output
// arguments are pointers and the return value is an integer status, 0 on
// success.
package lapack

// Version of the linear algebra library.
const (
	VersionMajor = 3
	VersionMinor = 1
	VersionPatch = 1
)

// Ilaver writes the library version into major, minor and patch.
func Ilaver(major, minor, patch *int) int {
	*major = VersionMajor
	*minor = VersionMinor
	*patch = VersionPatch
	return 0
}
