package nutrient

import "sort"

// Profile is a per-100g nutrient amount map for one food. Absent keys mean
// "not measured", not zero; Get treats them as zero for arithmetic.
type Profile map[Key]float64

// Get returns the amount for k, or 0 when absent.
func (p Profile) Get(k Key) float64 {
	return p[k]
}

// Has reports whether k carries a measured value.
func (p Profile) Has(k Key) bool {
	_, ok := p[k]
	return ok
}

// Set stores amount under k, flooring negatives to 0 and dropping unknown
// keys. Malformed inputs are absorbed here rather than surfaced as errors so
// downstream stages stay total.
func (p Profile) Set(k Key, amount float64) {
	if !k.Valid() {
		return
	}
	if amount < 0 {
		amount = 0
	}
	p[k] = amount
}

// Clone returns an independent copy of p.
func (p Profile) Clone() Profile {
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Scale returns a new profile with every amount multiplied by factor.
// Negative factors are treated as 0.
func (p Profile) Scale(factor float64) Profile {
	if factor < 0 {
		factor = 0
	}
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v * factor
	}
	return out
}

// Keys returns the measured canonical keys in stable panel-then-dictionary
// order. Keys outside the dictionary are never reported.
func (p Profile) Keys() []Key {
	out := make([]Key, 0, len(p))
	for _, k := range allKeys {
		if p.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// FromStringMap builds a Profile from a loosely-typed key map, dropping
// unknown keys and flooring negatives. Returns the dropped key names for
// diagnostics.
func FromStringMap(m map[string]float64) (Profile, []string) {
	p := make(Profile, len(m))
	var dropped []string
	for s, v := range m {
		k, ok := Parse(s)
		if !ok {
			dropped = append(dropped, s)
			continue
		}
		p.Set(k, v)
	}
	sort.Strings(dropped)
	return p, dropped
}
