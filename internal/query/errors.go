package query

import (
	"errors"
	"fmt"

	"github.com/MikeSquared-Agency/resortinfo/internal/dataset"
)

var (
	// ErrInvalidArgument marks missing or out-of-range request fields.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound marks a missing resort directory or source file.
	ErrNotFound = dataset.ErrNotFound
)

func invalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

// classify folds dataset name errors into ErrInvalidArgument and passes
// everything else through.
func classify(err error) error {
	if errors.Is(err, dataset.ErrInvalidName) {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return err
}
