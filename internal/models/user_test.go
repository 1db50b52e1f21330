package models

import (
	"testing"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"admin role", RoleAdmin, true},
		{"driver role", RoleDriver, true},
		{"invalid role", "invalid", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestUserDriverProfile(t *testing.T) {
	user := &User{
		Username: "marcus",
		Role:     RoleDriver,
		Driver:   &DriverProfile{FullName: "Marcus Lee", LicenseNo: "D-4471"},
		IsActive: true,
	}
	if user.Driver == nil {
		t.Fatal("expected driver profile to be set")
	}
	if user.Driver.LicenseNo != "D-4471" {
		t.Errorf("expected licence D-4471, got %s", user.Driver.LicenseNo)
	}

	rider := &User{Username: "ada", Role: RoleAdmin}
	if rider.Driver != nil {
		t.Error("expected no driver profile on admin user")
	}
}
