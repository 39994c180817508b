package model

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"Server", RoleServer},
		{"chef", RoleChef},
		{"BARTENDER", RoleBartender},
		{"HeadWaiter", RoleHeadWaiter},
		{"head waiter", RoleHeadWaiter},
		{"HEADWAITER", RoleHeadWaiter},
		{" manager ", RoleManager},
		{"astronaut", RoleServer}, // unknown falls back to Server
		{"", RoleServer},
	}

	for _, tt := range tests {
		if got := ParseRole(tt.in); got != tt.want {
			t.Errorf("ParseRole(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAvailableOn(t *testing.T) {
	always := Employee{Name: "Alice Moreau"}
	for _, day := range Weekdays {
		if !always.AvailableOn(day) {
			t.Errorf("empty availability should mean every day, failed for %v", day)
		}
	}

	weekends := Employee{Name: "Derek Walsh", Availability: []Weekday{Saturday, Sunday}}
	if !weekends.AvailableOn(Saturday) {
		t.Error("expected available on Saturday")
	}
	if weekends.AvailableOn(Tuesday) {
		t.Error("expected unavailable on Tuesday")
	}
}
