package types

import "rentspace/constants"

// Principal is the authenticated caller of a request. It is built by the
// auth middleware and passed explicitly to every service call.
type Principal struct {
	UserID uint
	Role   string
}

func (p Principal) IsTenant() bool   { return p.Role == constants.RoleTenant }
func (p Principal) IsLandlord() bool { return p.Role == constants.RoleLandlord }
func (p Principal) IsAdmin() bool    { return p.Role == constants.RoleAdmin }

// Page is a zero-based page request.
type Page struct {
	Page  int
	Limit int
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int {
	return p.Page * p.Limit
}
