package cmd

import (
	"bytes"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/curtismckinney/necronomicon/internal/machine/printer"
	"github.com/curtismckinney/necronomicon/internal/parseast"
)

// TestCompile_MachineIRSnapshot pins the machine program `compile` prints
// for the two smallest fixture programs against a go-snaps snapshot.
func TestCompile_MachineIRSnapshot(t *testing.T) {
	cases := map[string]func() *parseast.Arena{
		"x_equals_1":        arenaXEquals1,
		"f_equals_x_plus_1": arenaFEqualsXPlus1,
	}

	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeArenaJSON(t, build())
			pipe, err := RunPipeline(path)
			if err != nil {
				t.Fatalf("RunPipeline: %v", err)
			}
			var buf bytes.Buffer
			printer.New(&buf, pipe.Interner).Print(pipe.Machine)
			snaps.MatchSnapshot(t, buf.String())
		})
	}
}
