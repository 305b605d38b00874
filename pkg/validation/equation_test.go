package validation

import (
	"strings"
	"testing"
)

func TestValidateEquationInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// Valid equations
		{"simple", "x + 5 = 10", false},
		{"coefficient", "2x = 10", false},
		{"explicit multiply", "2*x = 10", false},
		{"parentheses", "2(x + 3) = 10", false},
		{"decimal", "0.5x + 1 = 2", false},
		{"exponent", "x^2 = 4", false},
		{"division", "x/2 = 3", false},
		{"negative", "-x = 4", false},
		{"no equals still charset-valid", "2x + 3", false},
		{"max length", strings.Repeat("1", MaxEquationLength-4) + "=1", false},

		// Invalid inputs
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"too long", strings.Repeat("1", MaxEquationLength+1), true},
		{"injection attempt", `x = 5"; DROP TABLE--`, true},
		{"shell metacharacters", "x = $(rm -rf)", true},
		{"unicode operator", "x × 2 = 4", true},
		{"null byte", "x = 5\x00", true},
		{"brackets", "x = [5]", true},
		{"percent", "x = 5%", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEquationInput(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEquationInput(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeEquationInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"trims whitespace", "  x + 5 = 10  ", "x + 5 = 10", false},
		{"already clean", "2x = 10", "2x = 10", false},
		{"invalid rejected", "x = @", "", true},
		{"empty rejected", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeEquationInput(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SanitizeEquationInput(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SanitizeEquationInput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
