package visibility

import "sort"

// interval is a contiguous range of viewing angles, radians relative to
// the viewer's facing direction.
type interval struct {
	lo, hi float64
}

// intervalSet tracks already-covered angular ranges.
type intervalSet []interval

// subtract returns the parts of iv not covered by the set.
func (set intervalSet) subtract(iv interval) []interval {
	sorted := make(intervalSet, len(set))
	copy(sorted, set)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].lo < sorted[j].lo })

	var out []interval

	curr := iv.lo

	for _, c := range sorted {
		if c.hi <= curr {
			continue
		}
		if c.lo > iv.hi {
			break
		}
		if c.lo > curr {
			out = append(out, interval{curr, c.lo})
		}

		if c.hi > curr {
			curr = c.hi
		}
		if curr >= iv.hi {
			return out
		}
	}

	if curr < iv.hi {
		out = append(out, interval{curr, iv.hi})
	}

	return out
}

// merge sorts the set and fuses overlapping intervals.
func (set intervalSet) merge() intervalSet {
	if len(set) == 0 {
		return nil
	}

	sort.Slice(set, func(i, j int) bool { return set[i].lo < set[j].lo })

	merged := intervalSet{set[0]}

	for _, iv := range set[1:] {
		last := &merged[len(merged)-1]
		if iv.lo <= last.hi {
			if iv.hi > last.hi {
				last.hi = iv.hi
			}
		} else {
			merged = append(merged, iv)
		}
	}

	return merged
}
