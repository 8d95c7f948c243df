package regressor

import (
	"errors"
	"fmt"

	"github.com/drakos74/representer/internal/model"
	"github.com/drakos74/representer/internal/tracker"
)

var (
	// ModelNotFittedErr is returned when predicting before a successful fit.
	ModelNotFittedErr = errors.New("prediction cannot be made, regressor is not fitted yet")
	// InferenceSampleShapeErr is returned when the sample length differs from the fitted one.
	InferenceSampleShapeErr = errors.New("inference sample has unexpected shape")
	// EnsembleFitWithoutRegressorsErr is returned when fitting an ensemble with no members.
	EnsembleFitWithoutRegressorsErr = errors.New("cannot fit ensemble that has no regressors registered")
	// ShardsMismatchErr is returned when there are fewer datasets than ensemble members.
	ShardsMismatchErr = errors.New("not enough datasets for the registered regressors")
)

// ShapeMismatchError carries the expected and actual feature lengths of a rejected sample.
type ShapeMismatchError struct {
	Expected int
	Actual   int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: (%d,) expected shape: (%d,)", InferenceSampleShapeErr.Error(), e.Actual, e.Expected)
}

func (e *ShapeMismatchError) Is(target error) bool {
	return target == InferenceSampleShapeErr
}

// checkShape compares the sample length against the one recorded at fit time.
func checkShape(expected int, s model.Sample) error {
	if s.Dim() != expected {
		return &ShapeMismatchError{
			Expected: expected,
			Actual:   s.Dim(),
		}
	}
	return nil
}

// ensureFitted guards the prediction of a single regressor.
func ensureFitted(dim int, s model.Sample) error {
	if dim == 0 {
		return ModelNotFittedErr
	}
	return checkShape(dim, s)
}

// ensureEnsembleFitted guards the prediction of an ensemble.
// All members are expected to be fitted on the same feature length.
func ensureEnsembleFitted(status tracker.Status, members []Regressor, s model.Sample) error {
	if len(members) == 0 || status != tracker.Finished {
		return ModelNotFittedErr
	}
	return checkShape(members[0].Dim(), s)
}
