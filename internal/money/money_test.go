package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Cents
		wantErr bool
	}{
		{in: "45.00", want: 4500},
		{in: "0.01", want: 1},
		{in: "0", want: 0},
		{in: "33.335", want: 3334}, // rounds half away from zero
		{in: "-12.50", want: -1250},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		in   Cents
		want string
	}{
		{in: 4500, want: "45.00"},
		{in: 1, want: "0.01"},
		{in: 0, want: "0.00"},
		{in: -3000, want: "-30.00"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("Cents(%d).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitEqual(t *testing.T) {
	tests := []struct {
		name  string
		total Cents
		n     int
		want  []Cents
	}{
		{name: "even division", total: 9000, n: 3, want: []Cents{3000, 3000, 3000}},
		{name: "remainder goes to first participants", total: 10000, n: 3, want: []Cents{3334, 3333, 3333}},
		{name: "two-cent remainder", total: 1001, n: 3, want: []Cents{334, 334, 333}},
		{name: "single participant", total: 1, n: 1, want: []Cents{1}},
		{name: "zero participants", total: 100, n: 0, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitEqual(tt.total, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitEqual(%d, %d) = %v, want %v", tt.total, tt.n, got, tt.want)
			}
			var sum Cents
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("part %d = %d, want %d", i, got[i], tt.want[i])
				}
				sum += got[i]
			}
			if tt.n > 0 && sum != tt.total {
				t.Errorf("parts sum to %d, want %d", sum, tt.total)
			}
		})
	}
}

func TestSplitByWeights(t *testing.T) {
	w := func(s string) decimal.Decimal {
		d, err := decimal.NewFromString(s)
		if err != nil {
			t.Fatalf("bad weight %q: %v", s, err)
		}
		return d
	}

	t.Run("percentage-style weights", func(t *testing.T) {
		got := SplitByWeights(20000, []decimal.Decimal{w("70"), w("30")})
		if got[0] != 14000 || got[1] != 6000 {
			t.Errorf("70/30 of 200.00 = %v, want [14000 6000]", got)
		}
	})

	t.Run("uneven weights sum exactly", func(t *testing.T) {
		got := SplitByWeights(10000, []decimal.Decimal{w("1"), w("1"), w("1")})
		var sum Cents
		for _, c := range got {
			sum += c
		}
		if sum != 10000 {
			t.Errorf("parts sum to %d, want 10000", sum)
		}
	})

	t.Run("share units", func(t *testing.T) {
		got := SplitByWeights(9000, []decimal.Decimal{w("2"), w("1")})
		if got[0] != 6000 || got[1] != 3000 {
			t.Errorf("2:1 of 90.00 = %v, want [6000 3000]", got)
		}
	})

	t.Run("zero weights rejected", func(t *testing.T) {
		if got := SplitByWeights(100, []decimal.Decimal{w("0"), w("0")}); got != nil {
			t.Errorf("expected nil for zero weights, got %v", got)
		}
	})

	t.Run("negative weight rejected", func(t *testing.T) {
		if got := SplitByWeights(100, []decimal.Decimal{w("2"), w("-1")}); got != nil {
			t.Errorf("expected nil for negative weight, got %v", got)
		}
	})
}

func TestWithinTolerance(t *testing.T) {
	if !WithinTolerance(100, 101) {
		t.Error("amounts one cent apart should be within tolerance")
	}
	if WithinTolerance(100, 102) {
		t.Error("amounts two cents apart should not be within tolerance")
	}
}
