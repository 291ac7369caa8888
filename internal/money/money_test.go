package money

import "testing"

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{1.005, 1.01},
		{1.004, 1.0},
		{2.675, 2.68},
		{16.665, 16.67},
		{0, 0},
		{-1.005, -1.01},
		{199.99, 199.99},
	}
	for _, c := range cases {
		if got := Round2(c.in); got != c.want {
			t.Errorf("Round2(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestPercentOf(t *testing.T) {
	if got := PercentOf(199.99, 25); got != 50.00 {
		t.Errorf("PercentOf(199.99, 25) = %v, want 50.00", got)
	}
	if got := PercentOf(100, 33); got != 33.00 {
		t.Errorf("PercentOf(100, 33) = %v, want 33.00", got)
	}
	if got := PercentOf(0.01, 5); got != 0.00 {
		t.Errorf("PercentOf(0.01, 5) = %v, want 0.00", got)
	}
}

func TestSplitCommission(t *testing.T) {
	fee, pay := SplitCommission(50.00, 33)
	if fee != 16.50 {
		t.Errorf("platform fee = %v, want 16.50", fee)
	}
	if pay != 33.50 {
		t.Errorf("creator pay = %v, want 33.50", pay)
	}
}

// The creator share must always be the remainder after the rounded fee, so
// the two parts reconstruct the total exactly at cent precision.
func TestSplitCommissionSumsToTotal(t *testing.T) {
	totals := []float64{0.01, 0.03, 1.00, 9.99, 16.67, 50.00, 123.45, 9999.99}
	splits := []float64{10, 25, 33, 50, 66.6, 90}
	for _, total := range totals {
		for _, split := range splits {
			fee, pay := SplitCommission(total, split)
			if got := Round2(fee + pay); got != Round2(total) {
				t.Errorf("split %v at %v%%: fee %v + pay %v = %v, want %v", total, split, fee, pay, got, Round2(total))
			}
		}
	}
}

func TestSplitCommissionZero(t *testing.T) {
	fee, pay := SplitCommission(0, 33)
	if fee != 0 || pay != 0 {
		t.Errorf("split of zero = (%v, %v), want (0, 0)", fee, pay)
	}
}
