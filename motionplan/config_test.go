package motionplan

import (
	"math"
	"testing"

	"go.uber.org/multierr"
	"go.viam.com/test"
)

func TestConfigValidate(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		test.That(t, NewDefaultConfig().Validate("planner"), test.ShouldBeNil)
	})

	t.Run("every problem is reported", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.StepLength = 0
		cfg.HistoryLength = 5
		cfg.ObstacleModel = "bogus"
		err := cfg.Validate("planner")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, multierr.Errors(err), test.ShouldHaveLength, 3)
		test.That(t, err.Error(), test.ShouldContainSubstring, "step_length")
		test.That(t, err.Error(), test.ShouldContainSubstring, "history_length")
		test.That(t, err.Error(), test.ShouldContainSubstring, "bogus")
		test.That(t, err.Error(), test.ShouldContainSubstring, `"planner"`)
	})

	t.Run("zero gains switch a field off", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.ObstacleGain = 0
		cfg.BoundaryGain = 0
		cfg.AntiCycleGain = 0
		test.That(t, cfg.Validate("planner"), test.ShouldBeNil)
	})

	t.Run("sweep limit", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.EscapeSweepDegrees = 200
		test.That(t, cfg.Validate("planner"), test.ShouldNotBeNil)
	})
}

func TestDirectionSources(t *testing.T) {
	fixed := NewFixedDirectionSource(0, math.Pi/2)
	test.That(t, fixed.NextHeading().X, test.ShouldAlmostEqual, 1)
	second := fixed.NextHeading()
	test.That(t, second.X, test.ShouldAlmostEqual, 0)
	test.That(t, second.Y, test.ShouldAlmostEqual, 1)
	test.That(t, fixed.NextHeading().X, test.ShouldAlmostEqual, 1)

	test.That(t, NewFixedDirectionSource().NextHeading().X, test.ShouldAlmostEqual, 1)

	a := NewRandomDirectionSource(42)
	b := NewRandomDirectionSource(42)
	for i := 0; i < 20; i++ {
		ha, hb := a.NextHeading(), b.NextHeading()
		test.That(t, ha, test.ShouldResemble, hb)
		test.That(t, ha.Norm(), test.ShouldAlmostEqual, 1)
	}
}

func TestStatusText(t *testing.T) {
	for _, status := range AllStatuses {
		text, err := status.MarshalText()
		test.That(t, err, test.ShouldBeNil)
		var back Status
		test.That(t, back.UnmarshalText(text), test.ShouldBeNil)
		test.That(t, back, test.ShouldEqual, status)
	}
	test.That(t, StatusEscaping.String(), test.ShouldEqual, "escaping")
	test.That(t, Status(42).String(), test.ShouldEqual, "unknown")

	_, err := Status(42).MarshalText()
	test.That(t, err, test.ShouldNotBeNil)
	var s Status
	test.That(t, s.UnmarshalText([]byte("lost")), test.ShouldNotBeNil)
}
