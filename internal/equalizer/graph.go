package equalizer

import (
	"sync"

	"github.com/faiface/beep"
)

// Graph is the bound signal chain: the captured element source, a preamp
// gain stage and the filter stages. It streams into the element's output.
type Graph struct {
	mu      sync.Mutex
	source  beep.Streamer
	preamp  float64
	filters [BandCount]*Biquad
	closed  bool
}

func newGraph(source beep.Streamer, sampleRate float64) *Graph {
	g := &Graph{source: source, preamp: 1}
	for i, freq := range Frequencies {
		g.filters[i] = NewBiquad(filterTypeFor(i), freq, FilterQ, sampleRate)
	}
	return g
}

// Stream pulls from the source and runs the chain in place
func (g *Graph) Stream(samples [][2]float64) (n int, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return 0, false
	}

	n, ok = g.source.Stream(samples)
	out := samples[:n]
	if g.preamp != 1 {
		for i := range out {
			out[i][0] *= g.preamp
			out[i][1] *= g.preamp
		}
	}
	for _, f := range g.filters {
		f.Process(out)
	}
	return n, ok
}

// Err propagates the source error
func (g *Graph) Err() error {
	return g.source.Err()
}

// Preamp returns the linear preamp gain
func (g *Graph) Preamp() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.preamp
}

// SetPreamp sets the linear preamp gain
func (g *Graph) SetPreamp(gain float64) {
	g.mu.Lock()
	g.preamp = gain
	g.mu.Unlock()
}

// BandGain returns the gain in dB of the filter at index
func (g *Graph) BandGain(index int) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.filters[index].Gain()
}

// SetBandGain sets the gain in dB of the filter at index
func (g *Graph) SetBandGain(index int, db float64) {
	g.mu.Lock()
	g.filters[index].SetGain(db)
	g.mu.Unlock()
}

// Filter returns the stage at index
func (g *Graph) Filter(index int) *Biquad {
	return g.filters[index]
}

// Response returns the linear magnitude of the chain at frequency
func (g *Graph) Response(frequency float64) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	mag := g.preamp
	for _, f := range g.filters {
		mag *= f.Magnitude(frequency)
	}
	return mag
}

func (g *Graph) close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}
