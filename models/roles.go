// models/roles.go
package models

// Role is one of the six playable roles. Each role starts with a distinct
// resource profile and carries a one-shot ability resolved by the game core.
type Role string

const (
	RoleMerchant Role = "merchant"
	RoleScholar  Role = "scholar"
	RoleDiplomat Role = "diplomat"
	RoleExplorer Role = "explorer"
	RoleArtisan  Role = "artisan"
	RoleMystic   Role = "mystic"

	// RoleAll is the fallback key in end-of-turn card effect maps.
	RoleAll Role = "all"
)

// Roles returns the playable roles in a fixed order.
func Roles() []Role {
	return []Role{
		RoleMerchant,
		RoleScholar,
		RoleDiplomat,
		RoleExplorer,
		RoleArtisan,
		RoleMystic,
	}
}

// StartingResources returns the opening resource profile for a role.
func StartingResources(role Role) Resources {
	switch role {
	case RoleMerchant:
		return Resources{Money: 12, Knowledge: 3, Influence: 5}
	case RoleScholar:
		return Resources{Money: 4, Knowledge: 12, Influence: 4}
	case RoleDiplomat:
		return Resources{Money: 5, Knowledge: 3, Influence: 12}
	case RoleExplorer:
		return Resources{Money: 6, Knowledge: 6, Influence: 4}
	case RoleArtisan:
		return Resources{Money: 8, Knowledge: 8, Influence: 2}
	case RoleMystic:
		return Resources{Money: 3, Knowledge: 9, Influence: 8}
	default:
		return Resources{Money: 5, Knowledge: 5, Influence: 5}
	}
}

// IsPlayable reports whether role is one of the six playable roles.
func IsPlayable(role Role) bool {
	for _, r := range Roles() {
		if r == role {
			return true
		}
	}
	return false
}
