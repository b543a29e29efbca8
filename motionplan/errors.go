package motionplan

import (
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// NewStartInCollisionError is returned when the start position is already in collision.
func NewStartInCollisionError(start r2.Point) error {
	return errors.Errorf("start position (%.3f, %.3f) is in collision", start.X, start.Y)
}

// NewGoalInCollisionError is returned when the goal can never be occupied.
func NewGoalInCollisionError(goal r2.Point) error {
	return errors.Errorf("goal position (%.3f, %.3f) is in collision", goal.X, goal.Y)
}

// NewOutOfWorkspaceError is returned when a named position lies outside the usable workspace.
func NewOutOfWorkspaceError(name string, p r2.Point) error {
	return errors.Errorf("%s position (%.3f, %.3f) lies outside the workspace margin", name, p.X, p.Y)
}
