package filter

import "testing"

func TestTernaryAnd(t *testing.T) {
	cases := []struct {
		a, b, want Ternary
	}{
		{True, True, True},
		{True, False, False},
		{False, False, False},
		{Undecided, False, False},
		{Undecided, True, Undecided},
		{Undecided, Undecided, Undecided},
	}
	for _, c := range cases {
		if got := c.a.And(c.b); got != c.want {
			t.Errorf("%s AND %s = %s, want %s", c.a, c.b, got, c.want)
		}
		if got := c.b.And(c.a); got != c.want {
			t.Errorf("%s AND %s = %s, want %s (commuted)", c.b, c.a, got, c.want)
		}
	}
}

func TestTernaryOr(t *testing.T) {
	cases := []struct {
		a, b, want Ternary
	}{
		{True, True, True},
		{True, False, True},
		{False, False, False},
		{Undecided, True, True},
		{Undecided, False, Undecided},
		{Undecided, Undecided, Undecided},
	}
	for _, c := range cases {
		if got := c.a.Or(c.b); got != c.want {
			t.Errorf("%s OR %s = %s, want %s", c.a, c.b, got, c.want)
		}
		if got := c.b.Or(c.a); got != c.want {
			t.Errorf("%s OR %s = %s, want %s (commuted)", c.b, c.a, got, c.want)
		}
	}
}

func TestTernaryToward(t *testing.T) {
	if !Undecided.Toward(true) || Undecided.Toward(false) {
		t.Fatalf("Toward must resolve Undecided to the default")
	}
	if False.Toward(true) {
		t.Fatalf("Toward must not override a definite value")
	}
}
