package domain

// PeriodRecord maps every registry key to its value for one period.
type PeriodRecord map[string]Value

// PeriodDataset is ordered by period: index 0 is period 1.
type PeriodDataset []PeriodRecord

// NewPeriodDataset allocates a dense dataset where every key starts as
// NotProvided, except keys listed in firstPeriodOnly which are NotApplicable
// from the second period on.
func NewPeriodDataset(periods int, keys []string, firstPeriodOnly map[string]bool) PeriodDataset {
	if periods < 0 {
		periods = 0
	}
	ds := make(PeriodDataset, periods)
	for p := range ds {
		rec := make(PeriodRecord, len(keys))
		for _, key := range keys {
			if p > 0 && firstPeriodOnly[key] {
				rec[key] = NA()
				continue
			}
			rec[key] = Missing()
		}
		ds[p] = rec
	}
	return ds
}

// Get returns the value for key in period p. Out of range lookups return
// NotProvided.
func (d PeriodDataset) Get(p int, key string) Value {
	if p < 0 || p >= len(d) {
		return Missing()
	}
	return d[p][key]
}

// Set stores a value when p is in range and reports whether it did.
func (d PeriodDataset) Set(p int, key string, v Value) bool {
	if p < 0 || p >= len(d) {
		return false
	}
	d[p][key] = v
	return true
}

// Clone returns a deep copy.
func (d PeriodDataset) Clone() PeriodDataset {
	out := make(PeriodDataset, len(d))
	for p, rec := range d {
		cp := make(PeriodRecord, len(rec))
		for k, v := range rec {
			cp[k] = v
		}
		out[p] = cp
	}
	return out
}
