package gen

// 2D simplex noise over a seeded permutation table. Values fall in [-1, 1].

var gradients = [12][2]float64{
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
	{1, 0}, {-1, 0}, {1, 0}, {-1, 0},
	{0, 1}, {0, -1}, {0, 1}, {0, -1},
}

// Simplex produces deterministic noise from a seed. It is read-only after
// construction and safe for concurrent use.
type Simplex struct {
	perm [512]uint8
}

// NewSimplex shuffles the permutation table with a seed-driven LCG.
func NewSimplex(seed int64) *Simplex {
	var p [256]uint8
	for i := range p {
		p[i] = uint8(i)
	}

	state := uint64(seed)
	for i := 255; i > 0; i-- {
		state = state*6364136223846793005 + 1442695040888963407
		j := int((state >> 33) % uint64(i+1))
		p[i], p[j] = p[j], p[i]
	}

	n := &Simplex{}
	for i := range n.perm {
		n.perm[i] = p[i&255]
	}
	return n
}

func (n *Simplex) hash(i, j int) int {
	return int(n.perm[i+int(n.perm[j])]) % len(gradients)
}

// At samples the noise field at (x, y).
func (n *Simplex) At(x, y float64) float64 {
	const (
		skew   = 0.36602540378443864676 // (sqrt(3) - 1) / 2
		unskew = 0.21132486540518711775 // (3 - sqrt(3)) / 6
	)

	s := (x + y) * skew
	i := floor(x + s)
	j := floor(y + s)

	t := float64(i+j) * unskew
	x0 := x - (float64(i) - t)
	y0 := y - (float64(j) - t)

	i1, j1 := 0, 1
	if x0 > y0 {
		i1, j1 = 1, 0
	}

	x1 := x0 - float64(i1) + unskew
	y1 := y0 - float64(j1) + unskew
	x2 := x0 - 1 + 2*unskew
	y2 := y0 - 1 + 2*unskew

	ii, jj := i&255, j&255
	sum := corner(gradients[n.hash(ii, jj)], x0, y0) +
		corner(gradients[n.hash(ii+i1, jj+j1)], x1, y1) +
		corner(gradients[n.hash(ii+1, jj+1)], x2, y2)
	return 70 * sum
}

func corner(g [2]float64, x, y float64) float64 {
	t := 0.5 - x*x - y*y
	if t < 0 {
		return 0
	}
	t *= t
	return t * t * (g[0]*x + g[1]*y)
}

func floor(x float64) int {
	xi := int(x)
	if x < float64(xi) {
		return xi - 1
	}
	return xi
}

// FractalNoise configures a sum of noise octaves.
type FractalNoise struct {
	Freq        float64
	Amplitude   float64
	Octaves     int
	Persistence float64
}

// Sample sums Octaves layers; layer i samples at Freq·2^i and is weighted by
// Amplitude·Persistence^i. The result is not normalised.
func (f FractalNoise) Sample(n *Simplex, x, y float64) float64 {
	var sum float64
	freq, amp := f.Freq, f.Amplitude
	for range f.Octaves {
		sum += amp * n.At(x*freq, y*freq)
		freq *= 2
		amp *= f.Persistence
	}
	return sum
}
