package slots

// Picker records a pickup and a return time independently.
// No ordering is enforced between them; date ordering lives in the range selector.
type Picker struct {
	pickup *TimeSlot
	ret    *TimeSlot
}

// NewPicker returns a picker with nothing selected.
func NewPicker() *Picker {
	return &Picker{}
}

func (p *Picker) SelectPickup(slot TimeSlot) {
	p.pickup = &slot
}

func (p *Picker) SelectReturn(slot TimeSlot) {
	p.ret = &slot
}

// Pickup returns the pickup slot and whether one was chosen.
func (p *Picker) Pickup() (TimeSlot, bool) {
	if p.pickup == nil {
		return "", false
	}
	return *p.pickup, true
}

// Return returns the return slot and whether one was chosen.
func (p *Picker) Return() (TimeSlot, bool) {
	if p.ret == nil {
		return "", false
	}
	return *p.ret, true
}

// PickupOrDefault falls back to Default when no pickup was chosen.
func (p *Picker) PickupOrDefault() TimeSlot {
	if s, ok := p.Pickup(); ok {
		return s
	}
	return Default
}

// ReturnOrDefault falls back to Default when no return was chosen.
func (p *Picker) ReturnOrDefault() TimeSlot {
	if s, ok := p.Return(); ok {
		return s
	}
	return Default
}

// Reset clears both selections.
func (p *Picker) Reset() {
	p.pickup = nil
	p.ret = nil
}
