package models

// Entity kinds for polymorphic references. Linked records and sharing grants
// point at their parent through an (entity_kind, entity_id) pair instead of a
// per-kind foreign key.
const (
	EntityKindCompany     = "company"
	EntityKindOpportunity = "opportunity"
	EntityKindAsset       = "asset"
	EntityKindQuote       = "worldwide_quote"
)

// KnownEntityKinds lists every kind that may own linked records.
var KnownEntityKinds = []string{
	EntityKindCompany,
	EntityKindOpportunity,
	EntityKindAsset,
	EntityKindQuote,
}

// IsKnownEntityKind reports whether kind names a registered root entity type.
func IsKnownEntityKind(kind string) bool {
	for _, k := range KnownEntityKinds {
		if k == kind {
			return true
		}
	}
	return false
}
