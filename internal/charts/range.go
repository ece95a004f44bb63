package charts

import "math"

// dynamicPadFraction is the share of the observed range added as
// padding on each side when it exceeds the binding's floor pad.
const dynamicPadFraction = 0.1

// axisBounds computes dynamic axis bounds over the non-absent values of
// a series. It returns ok=false when every value is absent, in which
// case the caller keeps its prior bounds.
func axisBounds(values []*float64, b Binding) (min, max float64, ok bool) {
	for _, v := range values {
		if v == nil {
			continue
		}
		if !ok {
			min, max = *v, *v
			ok = true
			continue
		}
		if *v < min {
			min = *v
		}
		if *v > max {
			max = *v
		}
	}
	if !ok {
		return 0, 0, false
	}

	pad := math.Max(b.FloorPad, dynamicPadFraction*(max-min))
	min -= pad
	max += pad

	if b.Percent {
		if min < 0 {
			min = 0
		}
		if max > 100 {
			max = 100
		}
	}
	return min, max, true
}
