// Package overlay defines how plugins publish content to the frame host.
//
// The contract is immediate-mode: every frame a plugin declares each panel
// it wants shown and receives, in return, whatever the user did to the rows
// it published on the previous frame.
package overlay

// Row is one checkable line of a panel.
type Row struct {
	Checked bool
	Text    string
}

// Panel is a titled list of rows plus the pending new-row draft.
type Panel struct {
	Title string
	Rows  []Row
	Draft string
}

// Input reports the interactions on a panel since the previous frame. Row
// indices refer to the rows of the previously published panel.
type Input struct {
	Toggled []int
	Deleted []int
	// Draft is the current content of the new-row input field.
	Draft string
	// Submitted is set when the user confirmed Draft.
	Submitted bool
}

// Surface is implemented by the frame host.
type Surface interface {
	Panel(id string, panel Panel) Input
}

// NopSurface displays nothing and never reports interactions.
type NopSurface struct{}

// Panel implements Surface.
func (NopSurface) Panel(_ string, panel Panel) Input {
	return Input{Draft: panel.Draft}
}
