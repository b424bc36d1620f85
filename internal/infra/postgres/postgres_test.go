package postgres

import "testing"

func TestPickKeepsOrderAndSkipsUnknown(t *testing.T) {
	m := map[string]string{"alice": "u1", "bob": "u2"}
	got := pick([]string{"bob", "nobody", "alice", "bob"}, m)
	if len(got) != 2 || got[0] != "u2" || got[1] != "u1" {
		t.Fatalf("unexpected ids %v", got)
	}
}

func TestNonNil(t *testing.T) {
	if got := nonNil(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %#v", got)
	}
}
