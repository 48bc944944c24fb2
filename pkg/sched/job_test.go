package sched

import "testing"

func TestJob_DeletionSetFollowsOnlyRequired(t *testing.T) {
	target := NewJob(NewUnit("target"), OpStart)
	requiredRequirer := NewJob(NewUnit("required-requirer"), OpStart)
	nonRequiredRequirer := NewJob(NewUnit("non-required-requirer"), OpStart)

	requiredRequirer.AddRequirement(target, true, true)
	nonRequiredRequirer.AddRequirement(target, false, false)

	set := target.DeletionSet()
	if len(set) != 2 {
		t.Fatalf("DeletionSet() = %v, want 2 entries (target + required requirer)", set)
	}
	found := false
	for _, j := range set {
		if j == requiredRequirer {
			found = true
		}
		if j == nonRequiredRequirer {
			t.Errorf("DeletionSet should not include a non-required requirer")
		}
	}
	if !found {
		t.Errorf("DeletionSet should include the required requirer")
	}
}

func TestJob_DeletionSetTransitive(t *testing.T) {
	a := NewJob(NewUnit("a"), OpStart)
	b := NewJob(NewUnit("b"), OpStart)
	c := NewJob(NewUnit("c"), OpStart)
	b.AddRequirement(a, true, true)
	c.AddRequirement(b, true, true)

	set := a.DeletionSet()
	if len(set) != 3 {
		t.Fatalf("DeletionSet() = %v, want [a, b, c]", set)
	}
}

func TestRemoveRequirement_UnlinksBothSides(t *testing.T) {
	from := NewJob(NewUnit("from"), OpStart)
	to := NewJob(NewUnit("to"), OpStart)
	req := from.AddRequirement(to, true, false)

	RemoveRequirement(req)

	if len(from.ReqsOut) != 0 {
		t.Errorf("from.ReqsOut = %v, want empty", from.ReqsOut)
	}
	if len(to.ReqsIn) != 0 {
		t.Errorf("to.ReqsIn = %v, want empty", to.ReqsIn)
	}
}
