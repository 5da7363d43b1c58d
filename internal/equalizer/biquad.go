package equalizer

import (
	"math"
	"math/cmplx"
)

// FilterType selects the biquad response shape
type FilterType int

const (
	LowShelf FilterType = iota
	Peaking
	HighShelf
)

func (t FilterType) String() string {
	switch t {
	case LowShelf:
		return "lowshelf"
	case HighShelf:
		return "highshelf"
	default:
		return "peaking"
	}
}

// filterTypeFor returns the shape of the stage at index: shelves at both
// ends of the chain, peaking in between.
func filterTypeFor(index int) FilterType {
	switch index {
	case 0:
		return LowShelf
	case BandCount - 1:
		return HighShelf
	default:
		return Peaking
	}
}

// Biquad is a stereo second-order IIR filter with Audio EQ Cookbook
// coefficients. It is not safe for concurrent use.
type Biquad struct {
	Type       FilterType
	Frequency  float64
	Q          float64
	sampleRate float64
	gain       float64

	// coefficients, normalised by a0
	b0, b1, b2, a1, a2 float64

	// direct form I history per channel
	x1, x2, y1, y2 [2]float64
}

// NewBiquad creates a filter at 0 dB, which passes audio unchanged
func NewBiquad(t FilterType, frequency, q, sampleRate float64) *Biquad {
	f := &Biquad{Type: t, Frequency: frequency, Q: q, sampleRate: sampleRate}
	f.compute()
	return f
}

// Gain returns the filter gain in dB
func (f *Biquad) Gain() float64 {
	return f.gain
}

// SetGain changes the filter gain in dB and recomputes coefficients.
// Sample history is kept so parameter changes do not click.
func (f *Biquad) SetGain(db float64) {
	if db == f.gain {
		return
	}
	f.gain = db
	f.compute()
}

// Reset clears the sample history
func (f *Biquad) Reset() {
	f.x1, f.x2, f.y1, f.y2 = [2]float64{}, [2]float64{}, [2]float64{}, [2]float64{}
}

func (f *Biquad) compute() {
	nyquist := f.sampleRate / 2
	if f.gain == 0 || f.Frequency <= 0 || f.Frequency >= nyquist {
		f.b0, f.b1, f.b2, f.a1, f.a2 = 1, 0, 0, 0, 0
		return
	}

	a := math.Pow(10, f.gain/40)
	w0 := 2 * math.Pi * f.Frequency / f.sampleRate
	cosw := math.Cos(w0)
	sinw := math.Sin(w0)

	var b0, b1, b2, a0, a1, a2 float64
	switch f.Type {
	case Peaking:
		alpha := sinw / (2 * f.Q)
		b0 = 1 + alpha*a
		b1 = -2 * cosw
		b2 = 1 - alpha*a
		a0 = 1 + alpha/a
		a1 = -2 * cosw
		a2 = 1 - alpha/a
	case LowShelf:
		// shelf slope of 1
		alpha := sinw / 2 * math.Sqrt2
		k := 2 * math.Sqrt(a) * alpha
		b0 = a * ((a + 1) - (a-1)*cosw + k)
		b1 = 2 * a * ((a - 1) - (a+1)*cosw)
		b2 = a * ((a + 1) - (a-1)*cosw - k)
		a0 = (a + 1) + (a-1)*cosw + k
		a1 = -2 * ((a - 1) + (a+1)*cosw)
		a2 = (a + 1) + (a-1)*cosw - k
	case HighShelf:
		alpha := sinw / 2 * math.Sqrt2
		k := 2 * math.Sqrt(a) * alpha
		b0 = a * ((a + 1) + (a-1)*cosw + k)
		b1 = -2 * a * ((a - 1) + (a+1)*cosw)
		b2 = a * ((a + 1) + (a-1)*cosw - k)
		a0 = (a + 1) - (a-1)*cosw + k
		a1 = 2 * ((a - 1) - (a+1)*cosw)
		a2 = (a + 1) - (a-1)*cosw - k
	}

	f.b0, f.b1, f.b2 = b0/a0, b1/a0, b2/a0
	f.a1, f.a2 = a1/a0, a2/a0
}

// Process filters samples in place
func (f *Biquad) Process(samples [][2]float64) {
	if f.b0 == 1 && f.b1 == 0 && f.b2 == 0 && f.a1 == 0 && f.a2 == 0 {
		return
	}
	for i := range samples {
		for c := 0; c < 2; c++ {
			x := samples[i][c]
			y := f.b0*x + f.b1*f.x1[c] + f.b2*f.x2[c] - f.a1*f.y1[c] - f.a2*f.y2[c]
			f.x2[c], f.x1[c] = f.x1[c], x
			f.y2[c], f.y1[c] = f.y1[c], y
			samples[i][c] = y
		}
	}
}

// Magnitude returns the linear magnitude response at frequency in Hz
func (f *Biquad) Magnitude(frequency float64) float64 {
	w := 2 * math.Pi * frequency / f.sampleRate
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1
	num := complex(f.b0, 0) + complex(f.b1, 0)*z1 + complex(f.b2, 0)*z2
	den := 1 + complex(f.a1, 0)*z1 + complex(f.a2, 0)*z2
	return cmplx.Abs(num / den)
}

// Response returns the linear magnitude of the whole chain described by s
// at frequency, for a graph running at sampleRate. It does not need a
// bound graph, so the curve can be drawn before playback starts.
func Response(s State, frequency, sampleRate float64) float64 {
	mag := s.PreampGain()
	for i, freq := range Frequencies {
		f := NewBiquad(filterTypeFor(i), freq, FilterQ, sampleRate)
		f.SetGain(s.BandGain(i))
		mag *= f.Magnitude(frequency)
	}
	return mag
}

// GainToDecibels converts a linear amplitude factor to dB
func GainToDecibels(gain float64) float64 {
	if gain <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(gain)
}
