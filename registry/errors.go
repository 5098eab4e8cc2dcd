package registry

import "errors"

var (
	// ErrAlreadyExists is returned by Create when learnerID is already
	// registered.
	ErrAlreadyExists = errors.New("registry: learner already exists")

	// ErrUnknownLearner is returned when learnerID has no registered state.
	ErrUnknownLearner = errors.New("registry: unknown learner")
)
