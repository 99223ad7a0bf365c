package train

import "gonum.org/v1/gonum/floats"

// Window is a fixed-capacity ring buffer of the most recent values.
type Window struct {
	values []float64
	next   int
	count  int
}

// NewWindow creates an empty window holding up to size values.
func NewWindow(size int) *Window {
	return &Window{values: make([]float64, size)}
}

// Push records v, overwriting the oldest value once the window is full.
func (w *Window) Push(v float64) {
	w.values[w.next] = v
	w.next = (w.next + 1) % len(w.values)
	if w.count < len(w.values) {
		w.count++
	}
}

// Min returns the smallest recorded value, or 0 for an empty window.
func (w *Window) Min() float64 {
	if w.count == 0 {
		return 0
	}
	return floats.Min(w.values[:w.count])
}

// Len returns the number of recorded values.
func (w *Window) Len() int {
	return w.count
}

// Full reports whether the window holds its full capacity.
func (w *Window) Full() bool {
	return w.count == len(w.values)
}

// Values returns the recorded values, oldest first.
func (w *Window) Values() []float64 {
	out := make([]float64, 0, w.count)
	if w.Full() {
		out = append(out, w.values[w.next:]...)
		return append(out, w.values[:w.next]...)
	}
	return append(out, w.values[:w.count]...)
}
