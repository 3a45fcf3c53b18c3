package member

import (
	"testing"

	"github.com/volatiletech/null/v8"
)

func testMembers() []Member {
	return []Member{
		{ID: 1, Name: "Karim", SportType: null.StringFrom(SportKarate), SubscriptionStatus: SubscriptionActive},
		{ID: 2, Name: "Aziz", SportType: null.StringFrom(SportGym), SubscriptionStatus: SubscriptionActive},
		{ID: 3, Name: "Karima", SportType: null.StringFrom(SportFootball), SubscriptionStatus: "Expired"},
		{ID: 4, Name: "Samir"},
	}
}

func TestFilter(t *testing.T) {
	members := testMembers()

	tests := []struct {
		name    string
		qf      QueryFilter
		wantIDs []int
	}{
		{name: "no filter", qf: QueryFilter{}, wantIDs: []int{1, 2, 3, 4}},
		{name: "all sentinel", qf: QueryFilter{Sport: FilterAll}, wantIDs: []int{1, 2, 3, 4}},
		{name: "search substring", qf: QueryFilter{Search: "karim"}, wantIDs: []int{1, 3}},
		{name: "search case-insensitive", qf: QueryFilter{Search: "KARIM"}, wantIDs: []int{1, 3}},
		{name: "search no match", qf: QueryFilter{Search: "zzz"}, wantIDs: []int{}},
		{name: "sport exact", qf: QueryFilter{Sport: SportKarate}, wantIDs: []int{1}},
		{name: "sport excludes missing", qf: QueryFilter{Sport: SportGym}, wantIDs: []int{2}},
		{name: "search and sport", qf: QueryFilter{Search: "karim", Sport: SportFootball}, wantIDs: []int{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(members, tt.qf)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Filter() returned %d members, want %d", len(got), len(tt.wantIDs))
			}
			for i, m := range got {
				if m.ID != tt.wantIDs[i] {
					t.Errorf("Filter()[%d].ID = %d, want %d", i, m.ID, tt.wantIDs[i])
				}
			}
		})
	}
}

func TestQueryFilterClean(t *testing.T) {
	qf := QueryFilter{Search: "  Karim ", Sport: " Karate "}
	qf.Clean()
	if qf.Search != "Karim" {
		t.Errorf("Clean() Search = %q", qf.Search)
	}
	if qf.Sport != "Karate" {
		t.Errorf("Clean() Sport = %q", qf.Sport)
	}
}

func TestUpdateMemberFromMember(t *testing.T) {
	m := Member{
		ID:               7,
		Name:             "Karim",
		PhoneNumber:      null.StringFrom("+243 999 000 111"),
		DateOfBirth:      null.StringFrom("1990-04-01"),
		RegistrationDate: null.StringFrom("2025-11-20"),
		PassportNumber:   null.StringFrom("OP1234567"),
		SportType:        null.StringFrom(SportKarate),
	}

	var um UpdateMember
	um.FromMember(m)

	if um.Name != m.Name {
		t.Errorf("FromMember() Name = %q", um.Name)
	}
	if um.PhoneNumber != m.PhoneNumber.String {
		t.Errorf("FromMember() PhoneNumber = %q", um.PhoneNumber)
	}
	if um.DateOfBirth != m.DateOfBirth.String {
		t.Errorf("FromMember() DateOfBirth = %q", um.DateOfBirth)
	}
	if um.RegistrationDate != m.RegistrationDate.String {
		t.Errorf("FromMember() RegistrationDate = %q", um.RegistrationDate)
	}
	if um.PassportNumber != m.PassportNumber.String {
		t.Errorf("FromMember() PassportNumber = %q", um.PassportNumber)
	}
	if um.SportType != m.SportType.String {
		t.Errorf("FromMember() SportType = %q", um.SportType)
	}
}
