package user

import "testing"

func TestValidateName(t *testing.T) {
	ok := []string{"Asha Logistics", "R. K. Transport Co.", "m"}
	for _, v := range ok {
		if err := ValidateName(v); err != nil {
			t.Fatalf("expected valid name %q: %v", v, err)
		}
	}
	bad := []string{"", "   "}
	for _, v := range bad {
		if err := ValidateName(v); err == nil {
			t.Fatalf("expected invalid name %q", v)
		}
	}
}

func TestValidateRole(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleShipper, RoleCarrier} {
		if err := ValidateRole(r); err != nil {
			t.Fatalf("expected valid role %q: %v", r, err)
		}
	}
	if err := ValidateRole(Role("OPERATOR")); err == nil {
		t.Fatalf("expected invalid role")
	}
}

func TestUser_IsActive(t *testing.T) {
	u := NewUser("Asha Logistics", RoleCarrier, "key-1")
	if !u.IsActive() {
		t.Fatalf("expected new user to be active")
	}
	u.Status = StatusDisabled
	if u.IsActive() {
		t.Fatalf("expected disabled user to be inactive")
	}
}
