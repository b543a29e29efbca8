package config

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"go.viam.com/fieldnav/logging"
	"go.viam.com/fieldnav/motionplan"
)

// Read reads a scenario from the given file. ${VAR} references are replaced from the environment
// before the file is parsed.
func Read(
	ctx context.Context,
	filePath string,
	logger logging.Logger,
) (*Scenario, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read scenario file %q", filePath)
	}

	return FromReader(ctx, filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a scenario from the given reader and specifies
// where, if applicable, the file the reader originated from.
// Fields missing from the input keep their default values.
func FromReader(
	ctx context.Context,
	originalPath string,
	r io.Reader,
	logger logging.Logger,
) (*Scenario, error) {
	scenario := Scenario{
		Planner:        motionplan.NewDefaultConfig(),
		MaxTicks:       DefaultMaxTicks,
		ConfigFilePath: originalPath,
	}
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&scenario); err != nil {
		return nil, errors.Wrapf(err, "failed to decode scenario from json")
	}
	if err := scenario.Validate("scenario"); err != nil {
		return nil, errors.Wrapf(err, "failed to validate scenario")
	}
	logger.CDebugw(ctx, "read scenario",
		"name", scenario.Name,
		"path", originalPath,
		"obstacles", len(scenario.Obstacles),
		"max_ticks", scenario.MaxTicks,
	)
	return &scenario, nil
}

// Write encodes the scenario as indented json.
func Write(w io.Writer, s *Scenario) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(s), "failed to encode scenario")
}
