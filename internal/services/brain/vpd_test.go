package brain

import (
	"math"
	"testing"
)

func TestVPD_KnownValues(t *testing.T) {
	tests := []struct {
		temp, humidity float64
		want           float64
	}{
		// Reference values from the Tetens formula.
		{25, 50, 1.5839},
		{28, 70, 1.1341},
		{30, 40, 2.5456},
	}
	for _, tt := range tests {
		got, ok := VPD(tt.temp, tt.humidity)
		if !ok {
			t.Errorf("VPD(%v, %v): unexpectedly out of domain", tt.temp, tt.humidity)
			continue
		}
		if math.Abs(got-tt.want) > 1e-3 {
			t.Errorf("VPD(%v, %v) = %.4f, want %.4f", tt.temp, tt.humidity, got, tt.want)
		}
	}
}

func TestVPD_SaturatedAirIsZero(t *testing.T) {
	got, ok := VPD(20, 100)
	if !ok {
		t.Fatal("unexpectedly out of domain")
	}
	if math.Abs(got) > 1e-9 {
		t.Errorf("VPD at 100%% humidity = %v, want 0", got)
	}
}

func TestVPD_DomainGuard(t *testing.T) {
	for _, temp := range []float64{-237.3, -300} {
		got, ok := VPD(temp, 50)
		if ok {
			t.Errorf("VPD(%v, 50): expected domain rejection", temp)
		}
		if got != 0 {
			t.Errorf("VPD(%v, 50) = %v, want sentinel 0", temp, got)
		}
	}
}
