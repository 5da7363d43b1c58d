package equalizer

import (
	"math"
	"testing"
)

const testRate = 44100.0

func TestBiquadZeroGainIsIdentity(t *testing.T) {
	for i, freq := range Frequencies {
		f := NewBiquad(filterTypeFor(i), freq, FilterQ, testRate)

		samples := make([][2]float64, 64)
		for j := range samples {
			samples[j] = [2]float64{math.Sin(float64(j)), math.Cos(float64(j) * 0.3)}
		}
		want := make([][2]float64, len(samples))
		copy(want, samples)

		f.Process(samples)
		for j := range samples {
			if samples[j] != want[j] {
				t.Fatalf("%s %vHz sample %d = %v, want %v", f.Type, freq, j, samples[j], want[j])
			}
		}
		if got := f.Magnitude(freq); math.Abs(got-1) > 1e-12 {
			t.Errorf("%s %vHz Magnitude = %v, want 1", f.Type, freq, got)
		}
	}
}

func TestPeakingCentreGain(t *testing.T) {
	for _, gain := range []float64{-12, -6, 3, 6, 12} {
		f := NewBiquad(Peaking, 1000, FilterQ, testRate)
		f.SetGain(gain)

		want := math.Pow(10, gain/20)
		if got := f.Magnitude(1000); math.Abs(got-want) > 1e-9 {
			t.Errorf("peaking %vdB Magnitude(1000) = %v, want %v", gain, got, want)
		}
		// far from the centre the filter is close to flat
		if got := f.Magnitude(20); math.Abs(got-1) > 0.01 {
			t.Errorf("peaking %vdB Magnitude(20) = %v, want about 1", gain, got)
		}
	}
}

func TestShelfGain(t *testing.T) {
	for _, gain := range []float64{-6, 6, 12} {
		want := math.Pow(10, gain/20)

		low := NewBiquad(LowShelf, 32, FilterQ, testRate)
		low.SetGain(gain)
		if got := low.Magnitude(0); math.Abs(got-want) > 1e-6 {
			t.Errorf("lowshelf %vdB Magnitude(0) = %v, want %v", gain, got, want)
		}

		high := NewBiquad(HighShelf, 16000, FilterQ, testRate)
		high.SetGain(gain)
		if got := high.Magnitude(testRate / 2); math.Abs(got-want) > 1e-6 {
			t.Errorf("highshelf %vdB Magnitude(nyquist) = %v, want %v", gain, got, want)
		}
	}
}

func TestBiquadAboveNyquist(t *testing.T) {
	f := NewBiquad(HighShelf, 16000, FilterQ, 22050)
	f.SetGain(6)

	if got := f.Magnitude(5000); math.Abs(got-1) > 1e-12 {
		t.Errorf("Magnitude(5000) = %v, want 1", got)
	}
}

func TestBiquadProcessSteadyState(t *testing.T) {
	// a low shelf passes DC with its full gain once settled
	f := NewBiquad(LowShelf, 125, FilterQ, testRate)
	f.SetGain(6)

	samples := make([][2]float64, 44100)
	for i := range samples {
		samples[i] = [2]float64{0.25, 0.25}
	}
	f.Process(samples)

	want := 0.25 * math.Pow(10, 6.0/20)
	last := samples[len(samples)-1]
	for c := 0; c < 2; c++ {
		if math.Abs(last[c]-want) > 1e-4 {
			t.Errorf("channel %d settled at %v, want %v", c, last[c], want)
		}
	}
}

func TestResponse(t *testing.T) {
	s := DefaultState()
	s.SetPreset("bass")
	if got := Response(s, 60, testRate); math.Abs(got-1) > 1e-12 {
		t.Errorf("disabled Response = %v, want 1", got)
	}

	flat := DefaultState()
	flat.Enabled = true
	flat.SetPreamp(-6)
	want := math.Pow(10, -6.0/20)
	if got := Response(flat, 1000, testRate); math.Abs(got-want) > 1e-9 {
		t.Errorf("flat -6dB preamp Response = %v, want %v", got, want)
	}

	s.Enabled = true
	if got := GainToDecibels(Response(s, 40, testRate)); got < 2 {
		t.Errorf("bass boost at 40Hz = %vdB, want a boost", got)
	}
}

func TestGainToDecibels(t *testing.T) {
	if got := GainToDecibels(1); got != 0 {
		t.Errorf("GainToDecibels(1) = %v, want 0", got)
	}
	if got := GainToDecibels(0); !math.IsInf(got, -1) {
		t.Errorf("GainToDecibels(0) = %v, want -Inf", got)
	}
}
