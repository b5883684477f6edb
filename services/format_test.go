package services

import "testing"

func TestFormatIDR(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{"zero", 0, "Rp 0"},
		{"hundreds", 500, "Rp 500"},
		{"thousands", 1500, "Rp 1.500"},
		{"millions", 1165500, "Rp 1.165.500"},
		{"rounds fraction", 999.6, "Rp 1.000"},
		{"negative", -2500, "-Rp 2.500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatIDR(tt.amount)
			if got != tt.want {
				t.Errorf("FormatIDR(%v) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}

func TestFormatQty(t *testing.T) {
	tests := []struct {
		qty  float64
		want string
	}{
		{5, "5"},
		{2.5, "2.50"},
		{0, "0"},
		{0.126, "0.13"},
	}
	for _, tt := range tests {
		if got := FormatQty(tt.qty); got != tt.want {
			t.Errorf("FormatQty(%v) = %q, want %q", tt.qty, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(11); got != "11%" {
		t.Errorf("FormatPercent(11) = %q", got)
	}
	if got := FormatPercent(2.5); got != "2.5%" {
		t.Errorf("FormatPercent(2.5) = %q", got)
	}
}
