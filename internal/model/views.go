package model

// Neighbor is another item seen together with a given item, reported at
// its most recent sighting.
type Neighbor struct {
	ItemID    string `json:"item_id"`
	Label     string `json:"label"`
	Zone      string `json:"zone"`
	Timestamp string `json:"timestamp"`
}

// ZoneOccupant is an item whose latest placement is in a given zone.
type ZoneOccupant struct {
	ItemID           string           `json:"item_id"`
	Label            string           `json:"label"`
	Category         Category         `json:"category"`
	DistributionType DistributionType `json:"distribution_type"`
	LastUpdated      string           `json:"last_updated"`
}

// ZoneDistribution counts placements for one (zone, distribution type) pair.
type ZoneDistribution struct {
	Zone             string           `json:"zone"`
	DistributionType DistributionType `json:"distribution_type"`
	Count            int64            `json:"count"`
}

// RoutineObservation is the (routine, motive, zone) projection of one
// placement, in ledger order.
type RoutineObservation struct {
	Routine string
	Motive  string
	Zone    string
}
