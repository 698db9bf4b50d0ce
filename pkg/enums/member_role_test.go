package enums

import "testing"

func TestParseMemberRole(t *testing.T) {
	for _, value := range []string{"creator", "admin", "staff"} {
		role, err := ParseMemberRole(value)
		if err != nil {
			t.Fatalf("parse %q: %v", value, err)
		}
		if !role.IsValid() {
			t.Fatalf("expected %q to be valid", value)
		}
	}

	if _, err := ParseMemberRole("owner"); err == nil {
		t.Fatal("expected error for unknown role")
	}
	if MemberRole("superuser").IsValid() {
		t.Fatal("unknown role should not validate")
	}
}

func TestParseInvitationStatus(t *testing.T) {
	status, err := ParseInvitationStatus("accepted")
	if err != nil {
		t.Fatalf("parse accepted: %v", err)
	}
	if !status.IsTerminal() {
		t.Fatal("accepted should be terminal")
	}
	if InvitationStatusPending.IsTerminal() {
		t.Fatal("pending should not be terminal")
	}
	if _, err := ParseInvitationStatus("expired"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
