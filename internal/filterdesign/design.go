package filterdesign

import (
	"fmt"
	"math"
	"math/cmplx"
)

// besselPoles lists one member of each conjugate pair of the normalized
// Bessel prototype poles, orders 1..10 back to back. Order n starts at
// index n*n/4.
var besselPoles = [...]complex128{
	complex(-1.00000000000e+00, 0.00000000000e+00), complex(-1.10160133059e+00, 6.36009824757e-01),
	complex(-1.32267579991e+00, 0.00000000000e+00), complex(-1.04740916101e+00, 9.99264436281e-01),
	complex(-1.37006783055e+00, 4.10249717494e-01), complex(-9.95208764350e-01, 1.25710573945e+00),
	complex(-1.50231627145e+00, 0.00000000000e+00), complex(-1.38087732586e+00, 7.17909587627e-01),
	complex(-9.57676548563e-01, 1.47112432073e+00), complex(-1.57149040362e+00, 3.20896374221e-01),
	complex(-1.38185809760e+00, 9.71471890712e-01), complex(-9.30656522947e-01, 1.66186326894e+00),
	complex(-1.68436817927e+00, 0.00000000000e+00), complex(-1.61203876622e+00, 5.89244506931e-01),
	complex(-1.37890321680e+00, 1.19156677780e+00), complex(-9.09867780623e-01, 1.83645135304e+00),
	complex(-1.75740840040e+00, 2.72867575103e-01), complex(-1.63693941813e+00, 8.22795625139e-01),
	complex(-1.37384121764e+00, 1.38835657588e+00), complex(-8.92869718847e-01, 1.99832584364e+00),
	complex(-1.85660050123e+00, 0.00000000000e+00), complex(-1.80717053496e+00, 5.12383730575e-01),
	complex(-1.65239648458e+00, 1.03138956698e+00), complex(-1.36758830979e+00, 1.56773371224e+00),
	complex(-8.78399276161e-01, 2.14980052431e+00), complex(-1.92761969145e+00, 2.41623471082e-01),
	complex(-1.84219624443e+00, 7.27257597722e-01), complex(-1.66181024140e+00, 1.22110021857e+00),
	complex(-1.36069227838e+00, 1.73350574267e+00), complex(-8.65756901707e-01, 2.29260483098e+00),
}

// pzSet is a fixed-capacity pole/zero list.
type pzSet struct {
	poles    [MaxPZ]complex128
	zeros    [MaxPZ]complex128
	numPoles int
	numZeros int
}

func (p *pzSet) addPole(z complex128) error {
	if p.numPoles >= MaxPZ {
		return fmt.Errorf("%w: more than %d poles", ErrInvalidSpec, MaxPZ)
	}
	p.poles[p.numPoles] = z
	p.numPoles++
	return nil
}

func (p *pzSet) addZero(z complex128) error {
	if p.numZeros >= MaxPZ {
		return fmt.Errorf("%w: more than %d zeros", ErrInvalidSpec, MaxPZ)
	}
	p.zeros[p.numZeros] = z
	p.numZeros++
	return nil
}

// designer holds the working state of one Design call.
type designer struct {
	spec     Spec
	splane   pzSet
	zplane   pzSet
	warped1  float64
	warped2  float64
	poleMask uint32
}

// Design computes recurrence coefficients for spec.
func Design(spec Spec) (*Coefficients, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	d := &designer{spec: spec, poleMask: spec.PoleMask}
	if d.poleMask == 0 {
		d.poleMask = ^uint32(0)
	}
	switch spec.Pass {
	case LowPass, HighPass, AllPass:
		d.spec.Alpha2 = spec.Alpha1
	}
	if spec.Family == Resonator {
		d.spec.Alpha2 = spec.Alpha1
	}

	var err error
	switch spec.Family {
	case Butterworth, Bessel, Chebyshev:
		switch spec.Family {
		case Butterworth:
			d.butterworthPoles()
		case Bessel:
			d.besselPoles()
		case Chebyshev:
			err = d.chebyshevPoles()
		}
		if err == nil {
			d.prewarp()
			d.normalize()
			err = d.toZPlane()
		}
	case Resonator:
		switch spec.Pass {
		case BandPass:
			err = d.bandpassResonator(resonatorIterations)
		case BandStop:
			err = d.notchResonator(resonatorIterations)
		case AllPass:
			err = d.allpassResonator(resonatorIterations)
		}
	case ProportionalIntegral:
		d.prewarp()
		d.splane.poles[0] = 0
		d.splane.zeros[0] = complex(-2*math.Pi*d.warped1, 0)
		d.splane.numPoles, d.splane.numZeros = 1, 1
		err = d.toZPlane()
	}
	if err != nil {
		return nil, err
	}

	if spec.ExtraZero {
		if err := d.addExtraZero(); err != nil {
			return nil, err
		}
	}

	return d.expand()
}

// choosePole keeps a left-half-plane pole if the pole mask selects it.
func (d *designer) choosePole(z complex128) {
	if real(z) >= 0 {
		return
	}
	if d.poleMask&1 != 0 {
		d.splane.poles[d.splane.numPoles] = z
		d.splane.numPoles++
	}
	d.poleMask >>= 1
}

func (d *designer) besselPoles() {
	n := d.spec.Order
	p := n * n / 4
	if n&1 == 1 {
		d.choosePole(besselPoles[p])
		p++
	}
	for range n / 2 {
		d.choosePole(besselPoles[p])
		d.choosePole(cmplx.Conj(besselPoles[p]))
		p++
	}
}

func (d *designer) butterworthPoles() {
	n := d.spec.Order
	for i := range 2 * n {
		var theta float64
		if n&1 == 1 {
			theta = float64(i) * math.Pi / float64(n)
		} else {
			theta = (float64(i) + 0.5) * math.Pi / float64(n)
		}
		d.choosePole(cmplx.Rect(1, theta))
	}
}

// chebyshevPoles places Butterworth poles on an ellipse sized by the ripple.
func (d *designer) chebyshevPoles() error {
	d.butterworthPoles()

	rip := math.Pow(10, -d.spec.RippleDB/10)
	eps := math.Sqrt(rip - 1)
	y := math.Asinh(1/eps) / float64(d.spec.Order)
	if !(y > 0) {
		return fmt.Errorf("%w: chebyshev ripple %v dB gives no pole warp", ErrInvalidSpec, d.spec.RippleDB)
	}

	sh, ch := math.Sinh(y), math.Cosh(y)
	for i := range d.splane.numPoles {
		p := d.splane.poles[i]
		d.splane.poles[i] = complex(real(p)*sh, imag(p)*ch)
	}
	return nil
}

func (d *designer) prewarp() {
	if d.spec.NoPrewarp || d.spec.MatchedZ {
		d.warped1 = d.spec.Alpha1
		d.warped2 = d.spec.Alpha2
		return
	}
	d.warped1 = math.Tan(math.Pi*d.spec.Alpha1) / math.Pi
	d.warped2 = math.Tan(math.Pi*d.spec.Alpha2) / math.Pi
}

// normalize turns the unit lowpass prototype into the requested pass type.
func (d *designer) normalize() {
	w1 := 2 * math.Pi * d.warped1
	w2 := 2 * math.Pi * d.warped2
	s := &d.splane
	n := s.numPoles

	switch d.spec.Pass {
	case LowPass:
		for i := range n {
			s.poles[i] *= complex(w1, 0)
		}
		s.numZeros = 0

	case HighPass:
		for i := range n {
			s.poles[i] = complex(w1, 0) / s.poles[i]
			s.zeros[i] = 0
		}
		s.numZeros = n

	case BandPass:
		w0 := math.Sqrt(w1 * w2)
		bw := w2 - w1
		for i := range n {
			hba := 0.5 * s.poles[i] * complex(bw, 0)
			r := complex(w0, 0) / hba
			temp := cmplx.Sqrt(1 - r*r)
			s.poles[i] = hba * (1 + temp)
			s.poles[n+i] = hba * (1 - temp)
			s.zeros[i] = 0
		}
		s.numZeros = n
		s.numPoles = 2 * n

	case BandStop:
		w0 := math.Sqrt(w1 * w2)
		bw := w2 - w1
		for i := range n {
			hba := 0.5 * complex(bw, 0) / s.poles[i]
			r := complex(w0, 0) / hba
			temp := cmplx.Sqrt(1 - r*r)
			s.poles[i] = hba * (1 + temp)
			s.poles[n+i] = hba * (1 - temp)
			s.zeros[i] = complex(0, w0)
			s.zeros[n+i] = complex(0, -w0)
		}
		s.numPoles = 2 * n
		s.numZeros = 2 * n
	}
}

// toZPlane maps the S-plane set with the bilinear or matched-Z transform.
func (d *designer) toZPlane() error {
	s, z := &d.splane, &d.zplane
	z.numPoles = s.numPoles
	z.numZeros = s.numZeros

	if d.spec.MatchedZ {
		for i := range s.numPoles {
			z.poles[i] = cmplx.Exp(s.poles[i])
		}
		for i := range s.numZeros {
			z.zeros[i] = cmplx.Exp(s.zeros[i])
		}
		return nil
	}

	for i := range s.numPoles {
		z.poles[i] = bilinear(s.poles[i])
	}
	for i := range s.numZeros {
		z.zeros[i] = bilinear(s.zeros[i])
	}
	for z.numZeros < z.numPoles {
		if err := z.addZero(-1); err != nil {
			return err
		}
	}
	return nil
}

func bilinear(s complex128) complex128 {
	return (2 + s) / (2 - s)
}

// bandpassResonator places a conjugate pole pair so the response phase
// is zero at Alpha1, bisecting the pole angle.
func (d *designer) bandpassResonator(iterations int) error {
	z := &d.zplane
	z.numPoles, z.numZeros = 2, 2
	z.zeros[0], z.zeros[1] = 1, -1

	theta := 2 * math.Pi * d.spec.Alpha1
	if math.IsInf(d.spec.Q, 1) {
		zp := cmplx.Rect(1, theta)
		z.poles[0], z.poles[1] = zp, cmplx.Conj(zp)
		return nil
	}

	var top, bot [MaxPZ + 1]complex128
	if err := expandPoly(z.zeros[:z.numZeros], top[:]); err != nil {
		return err
	}

	r := math.Exp(-theta / (2 * d.spec.Q))
	at := cmplx.Rect(1, theta)
	thm, th1, th2 := theta, 0.0, math.Pi
	for range iterations {
		zp := cmplx.Rect(r, thm)
		z.poles[0], z.poles[1] = zp, cmplx.Conj(zp)
		if err := expandPoly(z.poles[:z.numPoles], bot[:]); err != nil {
			return err
		}
		g := evaluate(top[:z.numZeros+1], bot[:z.numPoles+1], at)
		phi := imag(g) / real(g)
		if phi > 0 {
			th2 = thm
		} else {
			th1 = thm
		}
		if math.Abs(phi) < epsilon {
			return nil
		}
		thm = 0.5 * (th1 + th2)
	}
	return fmt.Errorf("%w: after %d iterations at alpha %v, Q %v", ErrNotConverged, iterations, d.spec.Alpha1, d.spec.Q)
}

// notchResonator keeps the resonator poles and puts zeros on the unit
// circle at the notch frequency.
func (d *designer) notchResonator(iterations int) error {
	if err := d.bandpassResonator(iterations); err != nil {
		return err
	}
	zz := cmplx.Rect(1, 2*math.Pi*d.spec.Alpha1)
	d.zplane.zeros[0], d.zplane.zeros[1] = zz, cmplx.Conj(zz)
	return nil
}

// allpassResonator mirrors the poles outside the unit circle as zeros.
func (d *designer) allpassResonator(iterations int) error {
	if err := d.bandpassResonator(iterations); err != nil {
		return err
	}
	d.zplane.zeros[0] = reflect(d.zplane.poles[0])
	d.zplane.zeros[1] = reflect(d.zplane.poles[1])
	return nil
}

func reflect(z complex128) complex128 {
	r := cmplx.Abs(z)
	return z / complex(r*r, 0)
}

// addExtraZero adds a conjugate zero pair and pads poles at the origin to
// keep the filter causal.
func (d *designer) addExtraZero() error {
	z := &d.zplane
	if z.numZeros+2 > MaxPZ {
		return fmt.Errorf("%w: too many zeros for an extra pair", ErrInvalidSpec)
	}
	zz := cmplx.Rect(1, 2*math.Pi*d.spec.ExtraZeroAlpha)
	z.zeros[z.numZeros] = zz
	z.zeros[z.numZeros+1] = cmplx.Conj(zz)
	z.numZeros += 2
	for z.numPoles < z.numZeros {
		if err := z.addPole(0); err != nil {
			return err
		}
	}
	return nil
}

// expand builds the recurrence from the Z-plane poles and zeros.
func (d *designer) expand() (*Coefficients, error) {
	z := &d.zplane
	var top, bot [MaxPZ + 1]complex128
	if err := expandPoly(z.zeros[:z.numZeros], top[:]); err != nil {
		return nil, fmt.Errorf("numerator: %w", err)
	}
	if err := expandPoly(z.poles[:z.numPoles], bot[:]); err != nil {
		return nil, fmt.Errorf("denominator: %w", err)
	}
	topC := top[:z.numZeros+1]
	botC := bot[:z.numPoles+1]

	theta := 2 * math.Pi * 0.5 * (d.spec.Alpha1 + d.spec.Alpha2)
	c := &Coefficients{
		NumZeros:   z.numZeros,
		NumPoles:   z.numPoles,
		X:          make([]float64, z.numZeros+1),
		Y:          make([]float64, z.numPoles+1),
		DCGain:     evaluate(topC, botC, 1),
		CenterGain: evaluate(topC, botC, cmplx.Rect(1, theta)),
		HFGain:     evaluate(topC, botC, -1),
	}

	lead := real(botC[z.numPoles])
	for i := range topC {
		c.X[i] = real(topC[i]) / lead
	}
	for i := range botC {
		c.Y[i] = -real(botC[i]) / lead
	}

	switch {
	case d.spec.Family == ProportionalIntegral:
		c.Gain = 1
	case d.spec.Pass == LowPass:
		c.Gain = cmplx.Abs(c.DCGain)
	case d.spec.Pass == HighPass:
		c.Gain = cmplx.Abs(c.HFGain)
	case d.spec.Pass == BandPass, d.spec.Pass == AllPass:
		c.Gain = cmplx.Abs(c.CenterGain)
	case d.spec.Pass == BandStop:
		c.Gain = cmplx.Abs(cmplx.Sqrt(c.DCGain * c.HFGain))
	default:
		c.Gain = 1
	}

	return c, nil
}

// expandPoly writes the coefficients of Π (z - w) over pz into coeffs,
// lowest power first, and fails if any coefficient is not real.
func expandPoly(pz []complex128, coeffs []complex128) error {
	n := len(pz)
	coeffs[0] = 1
	for i := 1; i <= n; i++ {
		coeffs[i] = 0
	}
	for _, w := range pz {
		nw := -w
		for i := n; i >= 1; i-- {
			coeffs[i] = nw*coeffs[i] + coeffs[i-1]
		}
		coeffs[0] = nw * coeffs[0]
	}
	for i := 0; i <= n; i++ {
		if math.Abs(imag(coeffs[i])) > epsilon {
			return fmt.Errorf("%w: coefficient of z^%d has imaginary part %g", ErrNotConjugate, i, imag(coeffs[i]))
		}
	}
	return nil
}

// evaluate returns top(z)/bot(z) for coefficient slices, lowest power first.
func evaluate(top, bot []complex128, z complex128) complex128 {
	return horner(top, z) / horner(bot, z)
}

func horner(coeffs []complex128, z complex128) complex128 {
	var sum complex128
	for i := len(coeffs) - 1; i >= 0; i-- {
		sum = sum*z + coeffs[i]
	}
	return sum
}
