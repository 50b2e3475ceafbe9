package internal

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestWarnSuccess(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	Warn(&buf, "careful with %s", "this")
	Success(&buf, "done\n")
	assert.Equal(t, "careful with this\ndone\n", buf.String())
}
