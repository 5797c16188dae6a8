package genealogy

import "errors"

// Sentinel kinds for generation errors.
var (
	// ErrTrunkBroken is returned when a trunk family ends up without a male
	// child to continue the line.
	ErrTrunkBroken = errors.New("trunk broken: no male child to continue")

	// ErrInvalidPolicy is returned when a policy cannot drive a build.
	ErrInvalidPolicy = errors.New("invalid generation policy")

	// ErrSaturated is returned when no person can take another family
	// before the target population is reached.
	ErrSaturated = errors.New("tree saturated below target population")

	// ErrInvalidRole is returned when a family is requested around a person
	// with a role other than father, mother or child.
	ErrInvalidRole = errors.New("invalid family role")
)
