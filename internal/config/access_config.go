package config

type AccessLevel int

const (
	AccessPublic AccessLevel = iota // No actor needed
	AccessActor                     // X-Actor-ID of an existing user required
)

// EndpointAccessConfig maps HTTP route names to their required access level
var EndpointAccessConfig = map[string]AccessLevel{
	// Operational
	"Health":  AccessPublic,
	"Metrics": AccessPublic,

	// Inventory ledger
	"ListInventory":     AccessPublic,
	"GetInventoryItem":  AccessPublic,
	"CheckAvailability": AccessPublic,
	"ReserveStock":      AccessActor,
	"ReleaseStock":      AccessActor,

	// Rentals - read
	"ListRentals":        AccessPublic,
	"CountActiveRentals": AccessPublic,
	"GetRental":          AccessPublic,
	"EstimatePenalty":    AccessPublic,

	// Rentals - write
	"RegisterRental": AccessActor,
	"ReturnRental":   AccessActor,
	"SweepOverdue":   AccessActor,

	// Configuration
	"GetPenaltyRate":    AccessPublic,
	"UpdatePenaltyRate": AccessActor,
}

// GetAccessLevel returns the access level for a given route name
func GetAccessLevel(route string) AccessLevel {
	if level, exists := EndpointAccessConfig[route]; exists {
		return level
	}
	// Default to the strictest level for unknown routes
	return AccessActor
}
