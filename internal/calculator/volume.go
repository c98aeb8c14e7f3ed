package calculator

import "errors"

// VolumeRatio compares the latest volume against the mean volume of the
// `window` bars preceding it. Requires window+1 volumes.
func VolumeRatio(volumes []float64, window int) (float64, error) {
	if window <= 0 {
		return 0, errors.New("window must be positive")
	}
	if len(volumes) < window+1 {
		return 0, errors.New("not enough data for volume ratio calculation")
	}

	sum := 0.0
	for i := len(volumes) - window - 1; i < len(volumes)-1; i++ {
		sum += volumes[i]
	}
	avg := sum / float64(window)
	if avg <= 0 {
		return 0, errors.New("trailing average volume is zero")
	}
	return volumes[len(volumes)-1] / avg, nil
}

// ChangePct returns the percent change of the latest close against the
// previous close.
func ChangePct(closes []float64) (float64, error) {
	if len(closes) < 2 {
		return 0, errors.New("need at least two closes")
	}
	prev := closes[len(closes)-2]
	if prev == 0 {
		return 0, errors.New("previous close is zero")
	}
	return (closes[len(closes)-1] - prev) / prev * 100.0, nil
}
