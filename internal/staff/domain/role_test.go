package domain

import "testing"

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"admin":      RoleAdmin,
		"Manager":    RoleManager,
		" COUNSELOR": RoleCounselor,
		"counsellor": RoleCounselor,
		"telecaller": RoleTelecaller,
		"janitor":    RoleUnknown,
		"":           RoleUnknown,
	}
	for input, want := range cases {
		if got := ParseRole(input); got != want {
			t.Fatalf("ParseRole(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestRoleFromClaimsPicksMostPrivileged(t *testing.T) {
	if got := RoleFromClaims([]string{"telecaller", "manager"}); got != RoleManager {
		t.Fatalf("expected manager, got %s", got)
	}
	if got := RoleFromClaims([]string{"nonsense"}); got != RoleUnknown {
		t.Fatalf("expected unknown, got %s", got)
	}
	if got := RoleFromClaims(nil); got != RoleUnknown {
		t.Fatalf("expected unknown for empty claims, got %s", got)
	}
}

func TestPermissionMatrix(t *testing.T) {
	if RoleTelecaller.CanAssignLeads() || RoleCounselor.CanAssignLeads() {
		t.Fatal("restricted roles must not assign leads")
	}
	if !RoleManager.CanAssignLeads() || !RoleAdmin.CanAssignLeads() {
		t.Fatal("manager and admin must assign leads")
	}
	if RoleManager.CanDeleteJobOrders() || !RoleAdmin.CanDeleteJobOrders() {
		t.Fatal("only admin deletes job orders")
	}
	if RoleManager.CanDeleteEnquiries() || !RoleAdmin.CanDeleteEnquiries() {
		t.Fatal("only admin deletes enquiries")
	}
	if !RoleTelecaller.RestrictedToOwnWork() || !RoleCounselor.RestrictedToOwnWork() {
		t.Fatal("telecaller and counselor are restricted to own work")
	}
	if RoleManager.RestrictedToOwnWork() || RoleAdmin.RestrictedToOwnWork() {
		t.Fatal("manager and admin are not restricted to own work")
	}
	if !RoleUnknown.RestrictedToOwnWork() {
		t.Fatal("unknown roles fall back to the most restrictive scope")
	}
}
