package gcode_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ultimaker/libCharon/gcode"
	"github.com/Ultimaker/libCharon/internal/stringtest"
)

// TestGriffinMissingGenerator is testable-properties scenario 5: a header
// missing GENERATOR.NAME fails with ErrInvalidHeader whose message mentions
// GENERATOR.NAME.
func TestGriffinMissingGenerator(t *testing.T) {
	t.Parallel()

	r := strings.NewReader(stringtest.JoinLF(
		";HEADER_VERSION:0.1",
		";FLAVOR:Griffin",
		";GENERATOR.VERSION:4.13",
		";GENERATOR.BUILD_DATE:2026-01-01",
		";TARGET_MACHINE.NAME:Ultimaker S5",
		";END_OF_HEADER",
		"",
	))

	_, err := gcode.ReadHeader(r, "")
	require.ErrorIs(t, err, gcode.ErrInvalidHeader)
	assert.Contains(t, err.Error(), "GENERATOR.NAME")
}

func TestGriffinWrongHeaderVersionFails(t *testing.T) {
	t.Parallel()

	r := strings.NewReader(stringtest.JoinLF(
		";HEADER_VERSION:0.2",
		";FLAVOR:Griffin",
		";END_OF_HEADER",
		"",
	))

	_, err := gcode.ReadHeader(r, "")
	require.ErrorIs(t, err, gcode.ErrInvalidHeader)
}
