// Package golden holds the reference models that pipeline outputs are
// checked against. Every function here is pure and deterministic.
package golden

import "fmt"

// Kernel is a square coefficient matrix together with its normalisation:
// out = clip((sum + Bias) >> Shift, Min, Max).
type Kernel struct {
	Name   string
	Coeffs [][]int
	Bias   int64
	Shift  uint
	Min    int
	Max    int
}

// Gaussian5x5 returns the 5x5 binomial blur kernel. The coefficients sum to
// 256, so the shift of 8 normalises them to unity gain.
func Gaussian5x5() Kernel {
	return Kernel{
		Name: "gaussian5x5",
		Coeffs: [][]int{
			{1, 4, 6, 4, 1},
			{4, 16, 24, 16, 4},
			{6, 24, 36, 24, 6},
			{4, 16, 24, 16, 4},
			{1, 4, 6, 4, 1},
		},
		Bias:  128,
		Shift: 8,
		Min:   0,
		Max:   255,
	}
}

// GaussianRow returns the separable 1-D factor of Gaussian5x5.
func GaussianRow() []int64 {
	return []int64{1, 4, 6, 4, 1}
}

// Size is the side length of the kernel.
func (k Kernel) Size() int {
	return len(k.Coeffs)
}

// HalfWidth is the number of samples the kernel reaches on each side of its
// centre.
func (k Kernel) HalfWidth() int {
	return k.Size() / 2
}

// Sum adds all coefficients.
func (k Kernel) Sum() int64 {
	var s int64
	for _, row := range k.Coeffs {
		for _, c := range row {
			s += int64(c)
		}
	}

	return s
}

// Validate checks that the kernel is square with an odd side.
func (k Kernel) Validate() error {
	n := k.Size()
	if n == 0 || n%2 == 0 {
		return fmt.Errorf("kernel %s: size %d is not odd", k.Name, n)
	}

	for i, row := range k.Coeffs {
		if len(row) != n {
			return fmt.Errorf("kernel %s: row %d has %d coefficients, expected %d",
				k.Name, i, len(row), n)
		}
	}

	if k.Min > k.Max {
		return fmt.Errorf("kernel %s: clip range [%d, %d] is empty",
			k.Name, k.Min, k.Max)
	}

	return nil
}

// Normalize applies the shift, optional rounding bias, and clipping to a raw
// dot product.
func (k Kernel) Normalize(sum int64, rounding bool) int {
	if rounding {
		sum += k.Bias
	}

	v := sum >> k.Shift

	if v < int64(k.Min) {
		return k.Min
	}

	if v > int64(k.Max) {
		return k.Max
	}

	return int(v)
}
