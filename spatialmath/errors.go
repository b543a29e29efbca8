package spatialmath

import (
	"github.com/pkg/errors"
)

func newBadRectangleDimensionsError(r Rectangle) error {
	return errors.Errorf("rectangle %v has non-positive dimensions", r)
}

func newUnknownObstacleModelError(model ObstacleModel) error {
	return errors.Errorf("obstacle model %q not recognized, expected %q or %q", model, NearestPointModel, SampledModel)
}

func newWorkspaceTooSmallError(bounds Rectangle, margin float64) error {
	return errors.Errorf("workspace %v leaves no room inside a margin of %.3f", bounds, margin)
}
