package kernel

// Zone is one of the four geographic quadrants around the depot, used to
// shard order queues.
type Zone string

// The four quadrant zones. Names follow compass quadrants relative to the
// depot anchor (NO = northwest, SE = southeast).
const (
	ZoneNO Zone = "NO"
	ZoneNE Zone = "NE"
	ZoneSO Zone = "SO"
	ZoneSE Zone = "SE"
)

var allZones = [...]Zone{ZoneNO, ZoneNE, ZoneSO, ZoneSE}

// Zones returns all four zones in a fixed order.
func Zones() []Zone {
	return allZones[:]
}

// Valid checks whether the Zone is one of the four quadrants.
func (z Zone) Valid() bool {
	for _, v := range allZones {
		if z == v {
			return true
		}
	}
	return false
}

// ClassifyZone assigns p to a quadrant relative to the depot anchor.
// With Δlat = depot.lat − p.lat and Δlon = depot.lon − p.lon:
// NO if Δlat ≥ 0 ∧ Δlon ≥ 0, NE if Δlat ≥ 0 ∧ Δlon ≤ 0,
// SO if Δlat ≤ 0 ∧ Δlon ≥ 0, otherwise SE. A point equal to the depot
// satisfies the first branch and classifies as NO.
func ClassifyZone(depot, p GeoPoint) Zone {
	dLat := depot.Lat() - p.Lat()
	dLon := depot.Lon() - p.Lon()

	switch {
	case dLat >= 0 && dLon >= 0:
		return ZoneNO
	case dLat >= 0 && dLon <= 0:
		return ZoneNE
	case dLat <= 0 && dLon >= 0:
		return ZoneSO
	default:
		return ZoneSE
	}
}
