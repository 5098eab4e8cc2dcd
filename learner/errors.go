package learner

import "errors"

// ErrEmptyBatch is returned by UpdateFromAnswers when given an empty batch.
var ErrEmptyBatch = errors.New("learner: empty batch")
