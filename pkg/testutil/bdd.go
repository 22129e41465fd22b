package testutil

import "testing"

// Given, When, and Then wrap t.Run so store and service scenarios read as
// fixture / action / assertion without a BDD framework dependency. The
// prefix lands in the subtest name, which keeps -run filters usable.
func Given(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("Given "+desc, fn)
}

func When(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("When "+desc, fn)
}

func Then(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("Then "+desc, fn)
}
