package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModeTransitions(t *testing.T) {
	m := NewMode()
	assert.Equal(t, ToolBrush, m.Tool())
	assert.True(t, m.CanDraw())

	assert.True(t, m.SetTool(ToolPan))
	assert.False(t, m.CanDraw())
	assert.True(t, m.SetTool(ToolBrush))

	assert.True(t, m.EnterResult())
	assert.False(t, m.EnterResult())
	assert.Equal(t, ToolPan, m.Tool())
	assert.False(t, m.CanDraw())

	assert.True(t, m.ExitResult())
	assert.Equal(t, ToolBrush, m.Tool(), "prior tool restored")
	assert.False(t, m.ExitResult())
}

func TestModeSetToolWhileViewing(t *testing.T) {
	m := NewMode()
	m.EnterResult()
	assert.False(t, m.SetTool(ToolPan), "effective tool is already pan")
	assert.Equal(t, ToolPan, m.EditingTool())
	m.ExitResult()
	assert.Equal(t, ToolPan, m.Tool())
}

func TestParseTool(t *testing.T) {
	tool, ok := ParseTool("pan")
	assert.True(t, ok)
	assert.Equal(t, ToolPan, tool)
	_, ok = ParseTool("lasso")
	assert.False(t, ok)
	assert.Equal(t, "brush", ToolBrush.String())
}
