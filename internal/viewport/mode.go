package viewport

// Tool selects which gesture handler is active while editing.
type Tool int

const (
	ToolBrush Tool = iota
	ToolPan
)

func (t Tool) String() string {
	switch t {
	case ToolBrush:
		return "brush"
	case ToolPan:
		return "pan"
	default:
		return "unknown"
	}
}

// ParseTool maps "brush" or "pan" to a Tool.
func ParseTool(s string) (Tool, bool) {
	switch s {
	case "brush":
		return ToolBrush, true
	case "pan":
		return ToolPan, true
	}
	return ToolBrush, false
}

// Mode is the editor interaction state: either editing with a tool, or
// viewing a processed result, which forces panning.
type Mode struct {
	viewing bool
	tool    Tool
}

// NewMode starts editing with the brush.
func NewMode() Mode {
	return Mode{tool: ToolBrush}
}

// Tool returns the effective tool.
func (m Mode) Tool() Tool {
	if m.viewing {
		return ToolPan
	}
	return m.tool
}

// EditingTool returns the tool that is (or will be, after leaving the
// result view) used for editing.
func (m Mode) EditingTool() Tool {
	return m.tool
}

// ViewingResult reports whether a result overlay is shown.
func (m Mode) ViewingResult() bool {
	return m.viewing
}

// CanDraw reports whether pointer input should reach the brush.
func (m Mode) CanDraw() bool {
	return !m.viewing && m.tool == ToolBrush
}

// SetTool selects the editing tool. While viewing a result the choice is
// remembered and applied on exit; the effective tool stays pan.
func (m *Mode) SetTool(t Tool) (changed bool) {
	before := m.Tool()
	m.tool = t
	return m.Tool() != before
}

// EnterResult switches to the result view.
func (m *Mode) EnterResult() bool {
	if m.viewing {
		return false
	}
	m.viewing = true
	return true
}

// ExitResult returns to editing with the remembered tool.
func (m *Mode) ExitResult() bool {
	if !m.viewing {
		return false
	}
	m.viewing = false
	return true
}
