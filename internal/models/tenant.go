package models

import "github.com/creasty/defaults"

// TenantSettings is the per-tenant configuration read by the engine. It is
// created and edited elsewhere; the engine treats it as an immutable value
// passed explicitly into each request.
type TenantSettings struct {
	TenantID          string `json:"tenant_id"`
	SaleParkingValue  int64  `json:"sale_parking_value" default:"45000"`
	SaleLockerValue   int64  `json:"sale_locker_value" default:"6000"`
	LeaseParkingValue int64  `json:"lease_parking_value" default:"150"`
	LeaseLockerValue  int64  `json:"lease_locker_value" default:"25"`
	InsightEnabled    bool   `json:"insight_enabled"`
	InsightAPIKey     string `json:"-"`
}

// DefaultTenantSettings returns the documented fallback settings used when a
// tenant has no stored configuration.
func DefaultTenantSettings(tenantID string) TenantSettings {
	s := TenantSettings{TenantID: tenantID}
	// Tags above are static, so Set cannot fail here.
	_ = defaults.Set(&s)
	return s
}

// ParkingValue returns the dollar value of one parking space for the given
// transaction direction.
func (s TenantSettings) ParkingValue(d Direction) int64 {
	if d == DirectionLease {
		return s.LeaseParkingValue
	}
	return s.SaleParkingValue
}

// LockerValue returns the dollar value of one locker for the given direction.
func (s TenantSettings) LockerValue(d Direction) int64 {
	if d == DirectionLease {
		return s.LeaseLockerValue
	}
	return s.SaleLockerValue
}
