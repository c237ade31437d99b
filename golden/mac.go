package golden

import "fmt"

// MACStep is one multiply-accumulate: accIn + pixel*coeff. There is no
// saturation.
func MACStep(pixel, coeff, accIn int64) int64 {
	return accIn + pixel*coeff
}

// MACChain folds MACStep over a chain of processing elements, starting from
// a zero accumulator.
func MACChain(pixels, coeffs []int64) (int64, error) {
	if len(pixels) != len(coeffs) {
		return 0, fmt.Errorf("chain has %d pixels but %d coefficients",
			len(pixels), len(coeffs))
	}

	var acc int64
	for i := range pixels {
		acc = MACStep(pixels[i], coeffs[i], acc)
	}

	return acc, nil
}
