// Package domain resolves geographic points to timezone regions.
//
// # Dataset
//
// Regions come in two tiers:
//
//	Shape regions: named WGS-84 polygons (EPSG:4326) for land and charted
//	waters, e.g. the tzid polygons published by timezone-boundary-builder.
//	A region made of several disjoint parts is stored as one ShapeRegion per
//	part, all sharing the same name.
//
//	Band regions: coarse fallbacks defined only by a closed longitude
//	interval, e.g. "Etc/GMT+2" covering [-37.5, -22.5]. Bands are meant to
//	cover [-180, 180]; CheckCoverage reports gaps and overlaps.
//
// One shape name is reserved as the uninhabited sentinel ("uninhabited" by
// default). Such shapes mark land with no timezone identity of its own and
// are never returned as a resolved region.
//
// # Resolution
//
// The nearest shape whose boundary lies within the territorial sea radius
// (12 nautical miles, 22 224 m) is looked up. Ties on distance go to the lower
// shape ID.
//
//	distance == 0                       → shape, "on land"
//	0 < distance <= radius              → shape, "in territorial sea"
//	no shape in range                   → band,  "in international waters"
//	nearest shape is the sentinel       → band,  "in an uninhabited area"
//	no band contains the longitude      → RegionNotFoundError
//
// The band used is the first one containing the longitude after a stable sort
// by LongMin, so overlapping bands resolve the same way on every run.
//
// # Request modes
//
// Raw lat/lon strings are interpreted by Settings.ResolveParams: neither
// present lists the catalog, both present and in range resolves, anything
// else is ErrInvalidParameters. Unparseable values count as absent.
package domain
