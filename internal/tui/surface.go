package tui

import "github.com/kingrea/topsy/internal/overlay"

type panelState struct {
	id      string
	panel   overlay.Panel
	frame   uint64
	pending overlay.Input
	// edited is set once the draft in pending comes from the text field.
	edited bool
}

// Surface collects the panels plugins draw each frame and the interactions
// the user performs on them between frames.
type Surface struct {
	frame  uint64
	panels []*panelState
	byID   map[string]*panelState
}

// NewSurface returns an empty surface.
func NewSurface() *Surface {
	return &Surface{byID: map[string]*panelState{}}
}

// Panel implements overlay.Surface.
func (s *Surface) Panel(id string, panel overlay.Panel) overlay.Input {
	st, ok := s.byID[id]
	if !ok {
		st = &panelState{id: id}
		s.byID[id] = st
		s.panels = append(s.panels, st)
	}
	st.panel = panel
	st.frame = s.frame
	input := st.pending
	if !st.edited {
		input.Draft = panel.Draft
	}
	st.pending = overlay.Input{}
	st.edited = false
	return input
}

func (s *Surface) beginFrame() {
	s.frame++
}

// visible returns the panels drawn during the latest frame, in draw order.
func (s *Surface) visible() []*panelState {
	var out []*panelState
	for _, st := range s.panels {
		if st.frame == s.frame {
			out = append(out, st)
		}
	}
	return out
}

func (s *Surface) toggle(id string, row int) {
	if st, ok := s.byID[id]; ok {
		st.pending.Toggled = append(st.pending.Toggled, row)
	}
}

func (s *Surface) remove(id string, row int) {
	if st, ok := s.byID[id]; ok {
		st.pending.Deleted = append(st.pending.Deleted, row)
	}
}

func (s *Surface) setDraft(id, draft string) {
	st, ok := s.byID[id]
	if !ok || st.pending.Submitted {
		return
	}
	st.pending.Draft = draft
	st.edited = true
}

func (s *Surface) submit(id, draft string) {
	if st, ok := s.byID[id]; ok {
		st.pending.Draft = draft
		st.pending.Submitted = true
		st.edited = true
	}
}
