package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares every backend's emitted
// source against a golden file under testdata/golden, one file per
// (scenario, backend) pair.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, backend := range scenario.Backends {
		code, ok := result.Emitted[backend]
		if !ok {
			continue
		}
		g.Assert(t, fmt.Sprintf("%s_%s", scenario.Name, backend), []byte(code))
	}

	return result, nil
}
