package charts

// AxisPolicy selects how a chart's value axis bounds are derived.
type AxisPolicy int

const (
	// AxisDynamic recomputes bounds from the observed values on every
	// refresh, padded per the binding's floor pad.
	AxisDynamic AxisPolicy = iota
	// AxisFixed keeps the bounds declared on the binding.
	AxisFixed
)

// Binding associates one payload series with one display surface on a
// dashboard page and the axis policy used when drawing it.
type Binding struct {
	Series   string // canonical series name in the refresh payload
	Surface  string // id of the display surface in the dashboard page
	Title    string
	Unit     string
	Policy   AxisPolicy
	FloorPad float64 // minimum padding applied to dynamic bounds
	Percent  bool    // clamp dynamic bounds into [0, 100]
	FixedMin float64
	FixedMax float64
}

// Surfaces is the set of display surface ids a dashboard page actually
// renders. Bindings referencing surfaces outside this set are skipped at
// initialization.
type Surfaces map[string]struct{}

// NewSurfaces builds a surface set from a list of ids.
func NewSurfaces(ids ...string) Surfaces {
	s := make(Surfaces, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether the surface id is present.
func (s Surfaces) Has(id string) bool {
	_, ok := s[id]
	return ok
}
