package geomops

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// ToWKT renders g as Well-Known Text, the before/after geometry
// representation the audit log stores (§7 audit schema: before_wkt,
// after_wkt).
func ToWKT(g orb.Geometry) string {
	if g == nil {
		return ""
	}
	return wkt.MarshalString(g)
}

// FromWKT parses Well-Known Text back into an orb.Geometry, used when
// replaying an audit log or re-hydrating a feature set loaded from a store
// that only carries WKT.
func FromWKT(s string) (orb.Geometry, error) {
	return wkt.Unmarshal(s)
}
