package search

// Options are the independently nullable option filters. Nil means no preference.
type Options struct {
	FreeDelivery bool          `json:"free_delivery"`
	Seats        *int          `json:"seats"`
	Transmission *Transmission `json:"transmission"`
	Fuel         *Fuel         `json:"fuel"`
}

// ToggleSeats selects n, or clears the filter when n is already selected.
func (o *Options) ToggleSeats(n int) {
	if o.Seats != nil && *o.Seats == n {
		o.Seats = nil
		return
	}
	o.Seats = &n
}

// ToggleTransmission selects t, or clears the filter when t is already selected.
func (o *Options) ToggleTransmission(t Transmission) {
	if o.Transmission != nil && *o.Transmission == t {
		o.Transmission = nil
		return
	}
	o.Transmission = &t
}

// ToggleFuel selects f, or clears the filter when f is already selected.
func (o *Options) ToggleFuel(f Fuel) {
	if o.Fuel != nil && *o.Fuel == f {
		o.Fuel = nil
		return
	}
	o.Fuel = &f
}

func (o *Options) ToggleFreeDelivery() {
	o.FreeDelivery = !o.FreeDelivery
}

// Reset clears every option.
func (o *Options) Reset() {
	*o = Options{}
}

// Active counts the options that constrain a search.
func (o Options) Active() int {
	n := 0
	if o.FreeDelivery {
		n++
	}
	if o.Seats != nil {
		n++
	}
	if o.Transmission != nil {
		n++
	}
	if o.Fuel != nil {
		n++
	}
	return n
}

// ToggleCategory returns the category after selecting c: the same value clears it.
func ToggleCategory(current, c string) string {
	if current == c {
		return ""
	}
	return c
}
