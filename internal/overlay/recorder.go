package overlay

// Recorder is a Surface that keeps the latest panel per id and replays
// scripted input. It backs headless runs and tests.
type Recorder struct {
	panels  map[string]Panel
	order   []string
	pending map[string]Input
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		panels:  map[string]Panel{},
		pending: map[string]Input{},
	}
}

// Panel implements Surface.
func (r *Recorder) Panel(id string, panel Panel) Input {
	if _, seen := r.panels[id]; !seen {
		r.order = append(r.order, id)
	}
	r.panels[id] = panel
	input, ok := r.pending[id]
	if !ok {
		return Input{Draft: panel.Draft}
	}
	delete(r.pending, id)
	return input
}

// Queue schedules input to be returned the next time panel id is drawn.
func (r *Recorder) Queue(id string, input Input) {
	r.pending[id] = input
}

// Last returns the most recent panel published under id.
func (r *Recorder) Last(id string) (Panel, bool) {
	panel, ok := r.panels[id]
	return panel, ok
}

// IDs lists panel ids in first-seen order.
func (r *Recorder) IDs() []string {
	return append([]string(nil), r.order...)
}
