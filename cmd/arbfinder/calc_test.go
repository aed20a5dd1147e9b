package main

import "testing"

func TestCalcIncludesWithdrawalByDefault(t *testing.T) {
	cmd := newCalcCmd(&runtime{})

	f := cmd.Flags().Lookup("include-withdrawal")
	if f == nil {
		t.Fatal("include-withdrawal flag not registered")
	}
	if f.DefValue != "true" {
		t.Errorf("include-withdrawal default = %s, want true", f.DefValue)
	}
}
