package iir

// Stage is a single-channel filter that runs per sample or in place over
// a block.
type Stage interface {
	Next(in float64) float64
	Process(block []float32)
	Reset()
}

// Cascade runs stages in order.
type Cascade []Stage

// Next filters one sample through every stage.
func (c Cascade) Next(in float64) float64 {
	for _, s := range c {
		in = s.Next(in)
	}
	return in
}

// Process filters block through every stage.
func (c Cascade) Process(block []float32) {
	for _, s := range c {
		s.Process(block)
	}
}

// Reset clears every stage.
func (c Cascade) Reset() {
	for _, s := range c {
		s.Reset()
	}
}
