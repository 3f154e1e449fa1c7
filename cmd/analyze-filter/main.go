// Command analyze-filter designs an IIR filter and prints its recurrence
// coefficients next to the magnitude response measured from its impulse
// response.
//
// Usage:
//
//	analyze-filter -family butterworth -pass lowpass -order 4 -alpha1 0.1
//	analyze-filter -family chebyshev -pass bandpass -order 3 -alpha1 0.1 -alpha2 0.2 -ripple -0.5
//	analyze-filter -family resonator -pass bandstop -alpha1 0.05 -q 10 -rate 48000
//	analyze-filter -order 2 -alpha1 0.2 -rate 48000 -shelf-freq 4000 -shelf-gain 6
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/tphakala/go-audio-dsp/internal/analysis"
	"github.com/tphakala/go-audio-dsp/internal/filterdesign"
	"github.com/tphakala/go-audio-dsp/internal/iir"
)

const (
	defaultFFTSize = 4096
	defaultRows    = 16
	floorDB        = -200.0
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "analyze-filter:", err)
		os.Exit(1)
	}
}

func run(args []string, w io.Writer) error {
	var spec filterdesign.Spec

	fs := flag.NewFlagSet("analyze-filter", flag.ContinueOnError)
	family := fs.String("family", "butterworth", "butterworth, bessel, chebyshev, resonator or pi")
	pass := fs.String("pass", "lowpass", "lowpass, highpass, bandpass, bandstop or allpass")
	fs.IntVar(&spec.Order, "order", 2, "Prototype order")
	fs.Float64Var(&spec.Alpha1, "alpha1", 0.1, "Corner frequency as a fraction of the sample rate")
	fs.Float64Var(&spec.Alpha2, "alpha2", 0, "Upper corner for band filters")
	fs.Float64Var(&spec.RippleDB, "ripple", -0.5, "Chebyshev passband ripple in dB")
	fs.Float64Var(&spec.Q, "q", 10, "Resonator quality factor (inf for unit-circle poles)")
	fs.BoolVar(&spec.MatchedZ, "matchedz", false, "Use the matched-z transform")
	size := fs.Int("size", defaultFFTSize, "FFT size of the measured response")
	rows := fs.Int("rows", defaultRows, "Rows in the response table")
	rate := fs.Float64("rate", 0, "Sample rate for printing frequencies in Hz (0 prints fractions)")
	shelfFreq := fs.Float64("shelf-freq", 0, "Cascade a high shelf at this frequency in Hz (needs -rate)")
	shelfGain := fs.Float64("shelf-gain", 0, "High shelf gain in dB")
	shelfSlope := fs.Float64("shelf-slope", 1, "High shelf slope")

	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if spec.Family, err = parseFamily(*family); err != nil {
		return err
	}
	if spec.Pass, err = parsePass(*pass); err != nil {
		return err
	}
	if *size < 2 || *rows < 1 {
		return fmt.Errorf("size %d and rows %d must be positive", *size, *rows)
	}

	c, err := filterdesign.Design(spec)
	if err != nil {
		return err
	}
	f, err := iir.New(c)
	if err != nil {
		return err
	}

	chain := iir.Cascade{f}
	designed := func(alpha float64) float64 { return cabs(c.Response(alpha)) }
	if *shelfFreq > 0 {
		if *rate <= 0 {
			return errors.New("-shelf-freq needs -rate")
		}
		shelf, err := iir.NewHighShelf(*rate, *shelfFreq, *shelfGain, *shelfSlope)
		if err != nil {
			return err
		}
		chain = append(chain, shelf)
		designed = func(alpha float64) float64 {
			return cabs(c.Response(alpha)) * shelf.Response(1, alpha)
		}
	}

	printCoefficients(w, spec, c)
	if len(chain) > 1 {
		fmt.Fprintf(w, "\nHigh shelf: %.1f Hz, %+.2f dB, slope %.2f\n", *shelfFreq, *shelfGain, *shelfSlope)
	}

	mag := analysis.Magnitude(analysis.Impulse(chain.Next, *size), *size)
	db := analysis.DB(mag, floorDB)
	printResponse(w, designed, db, *size, *rows, *rate)

	k, peak := analysis.Peak(mag)
	fmt.Fprintf(w, "\nPeak: %.4f (%.2f dB) at %s\n", peak, db[k], formatFreq(k, *size, *rate))
	return nil
}

func parseFamily(s string) (filterdesign.Family, error) {
	switch strings.ToLower(s) {
	case "butterworth", "bw":
		return filterdesign.Butterworth, nil
	case "bessel", "be":
		return filterdesign.Bessel, nil
	case "chebyshev", "ch":
		return filterdesign.Chebyshev, nil
	case "resonator", "re":
		return filterdesign.Resonator, nil
	case "pi", "proportional-integral":
		return filterdesign.ProportionalIntegral, nil
	default:
		return 0, fmt.Errorf("unknown filter family %q", s)
	}
}

func parsePass(s string) (filterdesign.Pass, error) {
	switch strings.ToLower(s) {
	case "lowpass", "lp":
		return filterdesign.LowPass, nil
	case "highpass", "hp":
		return filterdesign.HighPass, nil
	case "bandpass", "bp":
		return filterdesign.BandPass, nil
	case "bandstop", "bs":
		return filterdesign.BandStop, nil
	case "allpass", "ap":
		return filterdesign.AllPass, nil
	default:
		return 0, fmt.Errorf("unknown pass type %q", s)
	}
}

func printCoefficients(w io.Writer, spec filterdesign.Spec, c *filterdesign.Coefficients) {
	fmt.Fprintf(w, "=== %s %s ===\n", spec.Family, spec.Pass)
	fmt.Fprintf(w, "Zeros: %d  Poles: %d  Gain: %.10g\n", c.NumZeros, c.NumPoles, c.Gain)
	fmt.Fprintf(w, "DC gain:     %.6g\n", cabs(c.DCGain)/c.Gain)
	fmt.Fprintf(w, "Center gain: %.6g\n", cabs(c.CenterGain)/c.Gain)
	fmt.Fprintf(w, "HF gain:     %.6g\n\n", cabs(c.HFGain)/c.Gain)

	fmt.Fprintln(w, "X coefficients:")
	for i, x := range c.X {
		fmt.Fprintf(w, "  x[%2d] = %+.14f\n", i, x)
	}
	fmt.Fprintln(w, "Y coefficients:")
	for i, y := range c.Y {
		fmt.Fprintf(w, "  y[%2d] = %+.14f\n", i, y)
	}
}

// printResponse compares the FFT of the impulse response with the
// response evaluated from the designed coefficients.
func printResponse(w io.Writer, designed func(alpha float64) float64, db []float64, size, rows int, rate float64) {
	fmt.Fprintf(w, "\n%-14s %12s %12s\n", "Frequency", "Measured dB", "Designed dB")
	half := size / 2
	step := max(1, half/rows)
	for k := 0; k <= half; k += step {
		alpha := float64(k) / float64(size)
		want := 20 * math.Log10(math.Max(designed(alpha), 1e-10))
		fmt.Fprintf(w, "%-14s %12.3f %12.3f\n", formatFreq(k, size, rate), db[k], want)
	}
}

func formatFreq(k, size int, rate float64) string {
	if rate > 0 {
		return fmt.Sprintf("%.1f Hz", analysis.BinFrequency(k, size, rate))
	}
	return fmt.Sprintf("%.5f", float64(k)/float64(size))
}

func cabs(z complex128) float64 {
	return math.Hypot(real(z), imag(z))
}
