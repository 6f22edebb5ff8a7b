package domain

import (
	"fmt"
	"slices"
	"sort"
)

// SortBands returns a copy of bands ordered by LongMin. The sort is stable, so
// bands with equal LongMin keep their store order.
func SortBands(bands []BandRegion) []BandRegion {
	sorted := slices.Clone(bands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LongMin < sorted[j].LongMin
	})
	return sorted
}

// FindBand returns the first band, in SortBands order, whose interval
// contains lon.
func FindBand(bands []BandRegion, lon float64) (BandRegion, bool) {
	for _, b := range SortBands(bands) {
		if b.Contains(lon) {
			return b, true
		}
	}
	return BandRegion{}, false
}

// Interval is a closed longitude range.
type Interval struct {
	Min float64
	Max float64
}

func (i Interval) String() string {
	return fmt.Sprintf("[%g, %g]", i.Min, i.Max)
}

// Overlap records two bands sharing more than a boundary.
type Overlap struct {
	First  BandRegion
	Second BandRegion
	Range  Interval
}

// Coverage summarises how a band set covers a longitude range.
type Coverage struct {
	Gaps     []Interval
	Overlaps []Overlap
}

// Complete reports whether every longitude in the range is covered.
func (c Coverage) Complete() bool { return len(c.Gaps) == 0 }

// CheckCoverage walks the bands in SortBands order and reports the parts of
// [minLon, maxLon] no band covers, and any pair of bands whose intervals
// intersect in more than a single shared edge. Shared edges are expected:
// adjacent bands are closed intervals.
func CheckCoverage(bands []BandRegion, minLon, maxLon float64) Coverage {
	var cov Coverage
	sorted := SortBands(bands)

	reach := minLon
	covered := false
	var reachBand BandRegion
	for _, b := range sorted {
		if b.LongMax < minLon || b.LongMin > maxLon {
			continue
		}
		switch {
		case b.LongMin > reach:
			cov.Gaps = append(cov.Gaps, Interval{Min: reach, Max: b.LongMin})
		case covered && b.LongMin < reach:
			cov.Overlaps = append(cov.Overlaps, Overlap{
				First:  reachBand,
				Second: b,
				Range:  Interval{Min: b.LongMin, Max: min(reach, b.LongMax)},
			})
		}
		if !covered || b.LongMax > reach {
			reach = b.LongMax
			reachBand = b
		}
		covered = true
	}

	if !covered {
		cov.Gaps = append(cov.Gaps, Interval{Min: minLon, Max: maxLon})
	} else if reach < maxLon {
		cov.Gaps = append(cov.Gaps, Interval{Min: reach, Max: maxLon})
	}
	return cov
}
