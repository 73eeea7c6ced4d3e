package objective

import "testing"

func TestGatePasses(t *testing.T) {
	rangeMax := 0.6
	tests := []struct {
		name  string
		gate  GateSpec
		value float64
		want  bool
	}{
		{"threshold-above", GateSpec{Type: GateThreshold, Threshold: 0.9}, 0.95, true},
		{"threshold-equal", GateSpec{Type: GateThreshold, Threshold: 0.9}, 0.9, true},
		{"threshold-below", GateSpec{Type: GateThreshold, Threshold: 0.9}, 0.5, false},
		{"boolean-positive", GateSpec{Type: GateBoolean}, 0.01, true},
		{"boolean-zero", GateSpec{Type: GateBoolean}, 0.0, false},
		{"range-default-max", GateSpec{Type: GateRange, Threshold: 0.2}, 1.0, true},
		{"range-below", GateSpec{Type: GateRange, Threshold: 0.2}, 0.1, false},
		{"range-inside", GateSpec{Type: GateRange, Threshold: 0.2, RangeMax: &rangeMax}, 0.6, true},
		{"range-above", GateSpec{Type: GateRange, Threshold: 0.2, RangeMax: &rangeMax}, 0.61, false},
		{"regex-fails-closed", GateSpec{Type: GateRegex, Threshold: 0.0}, 1.0, false},
		{"unknown-fails-closed", GateSpec{Type: "FUZZY"}, 1.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.gate.Passes(tt.value); got != tt.want {
				t.Errorf("Passes(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestDimensionValid(t *testing.T) {
	for _, d := range Dimensions() {
		if !d.Valid() {
			t.Errorf("%s should be valid", d)
		}
	}
	if Dimension("speed").Valid() {
		t.Error("speed should not be a dimension")
	}
}
