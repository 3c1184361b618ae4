package registry

import "errors"

var (
	// ErrInvalidTag is returned for unparseable precise tags and masks.
	ErrInvalidTag = errors.New("invalid version tag")

	// ErrDuplicateRelease is returned when a package already has a release
	// with the same precise tag.
	ErrDuplicateRelease = errors.New("duplicate release tag")

	// ErrStaleVersion is returned when a release is recorded at a version
	// not newer than the package's last release.
	ErrStaleVersion = errors.New("release version not newer than previous release")
)
