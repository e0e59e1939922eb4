package models

import "testing"

func TestMemberIsEligible(t *testing.T) {
	tests := []struct {
		name   string
		member Member
		want   bool
	}{
		{name: "active confirmed", member: Member{IsActive: true, ApprovalStatus: ApprovalConfirmed}, want: true},
		{name: "inactive confirmed", member: Member{IsActive: false, ApprovalStatus: ApprovalConfirmed}, want: false},
		{name: "active pending", member: Member{IsActive: true, ApprovalStatus: ApprovalPending}, want: false},
		{name: "active rejected", member: Member{IsActive: true, ApprovalStatus: ApprovalRejected}, want: false},
		{name: "zero value", member: Member{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.member.IsEligible(); got != tt.want {
				t.Errorf("IsEligible() = %v, want %v", got, tt.want)
			}
		})
	}
}
