package field

// DoubleField is a read/write pair of equally shaped fields. Passes read from
// Current and write to Next, then Swap promotes the written buffer. The two
// slots are only reachable through these accessors.
type DoubleField struct {
	current *Field
	next    *Field
}

// NewDoubleField allocates a zeroed pair.
func NewDoubleField(width, height, components int) *DoubleField {
	return &DoubleField{
		current: NewField(width, height, components),
		next:    NewField(width, height, components),
	}
}

// Current returns the readable slot.
func (d *DoubleField) Current() *Field { return d.current }

// Next returns the writable slot.
func (d *DoubleField) Next() *Field { return d.next }

// Swap exchanges the two slots.
func (d *DoubleField) Swap() {
	d.current, d.next = d.next, d.current
}

// DrawTo runs proc against the writable slot and swaps, so the write becomes
// visible as Current when proc returns.
func (d *DoubleField) DrawTo(proc func(dst *Field)) {
	proc(d.next)
	d.Swap()
}

// Width returns the field width shared by both slots.
func (d *DoubleField) Width() int { return d.current.Width }

// Height returns the field height shared by both slots.
func (d *DoubleField) Height() int { return d.current.Height }

// Components returns the per-texel component count shared by both slots.
func (d *DoubleField) Components() int { return d.current.Components }

// ClearBoth zeroes both slots.
func (d *DoubleField) ClearBoth() {
	d.current.Clear()
	d.next.Clear()
}

// FillBoth sets every texel of both slots to the given component values.
func (d *DoubleField) FillBoth(vals ...float32) {
	d.current.Fill(vals...)
	d.next.Fill(vals...)
}
