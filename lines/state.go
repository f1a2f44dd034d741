// Package lines places the visible line field: a double-buffered state array
// advanced once per displayed frame by a damped spring forced by the sampled
// fluid velocity.
package lines

// State is one line's dynamic state. Endpoint and velocity are offsets from
// the line's basepoint in normalized grid units.
type State struct {
	EndpointX, EndpointY float32
	VelocityX, VelocityY float32
	Color                [4]float32
	ColorVelocity        [3]float32
	Width                float32
}

// DoubleBuffer is the two-slot line state arena. The placement pass reads one
// slot and writes the other, then swaps; the slots never alias.
type DoubleBuffer struct {
	current []State
	next    []State
}

// NewDoubleBuffer allocates both slots at rest.
func NewDoubleBuffer(n int) *DoubleBuffer {
	return &DoubleBuffer{
		current: make([]State, n),
		next:    make([]State, n),
	}
}

// Current returns the stable slot read by the renderer.
func (d *DoubleBuffer) Current() []State { return d.current }

// Next returns the write target for the placement pass.
func (d *DoubleBuffer) Next() []State { return d.next }

// Swap exchanges the slots.
func (d *DoubleBuffer) Swap() {
	d.current, d.next = d.next, d.current
}

// Len returns the line count.
func (d *DoubleBuffer) Len() int { return len(d.current) }
