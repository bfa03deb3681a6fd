package diag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/esoule/rtems/diag"
)

func TestAssert_PassesSilently(t *testing.T) {
	assert.NotPanics(t, func() {
		diag.Assert(true, "unreachable")
	})
}

func TestAssert_PanicsOnViolation(t *testing.T) {
	assert.PanicsWithValue(t, "rtems/scheduler: assertion failed: node must be blocked before destroy", func() {
		diag.Assert(false, "node must be blocked before destroy")
	})
}

func TestDefaultLogger_NotNil(t *testing.T) {
	assert.NotNil(t, diag.Default())
}
