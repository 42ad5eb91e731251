package segment

// Downsample maps a signal window onto exactly width pixel values.
//
// The window is first resampled by linear interpolation to exactly
// width*samplesPerPixel points over a uniform index grid, then each contiguous
// block of samplesPerPixel points is averaged into one pixel value. With
// samplesPerPixel == 1 the averaging step is skipped. The output length is
// always exactly width regardless of the input length, which is what lets
// annotation coordinates be expressed in a fixed pixel domain.
func Downsample(window []float64, width, samplesPerPixel int) []float64 {
	target := width * samplesPerPixel
	resampled := resample(window, target)

	if samplesPerPixel == 1 {
		return resampled
	}

	pixels := make([]float64, width)
	for p := 0; p < width; p++ {
		var sum float64
		for s := 0; s < samplesPerPixel; s++ {
			sum += resampled[p*samplesPerPixel+s]
		}
		pixels[p] = sum / float64(samplesPerPixel)
	}
	return pixels
}

// resample linearly interpolates signal onto n uniformly spaced points
// spanning [0, len(signal)-1].
func resample(signal []float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if len(signal) == 0 {
		return make([]float64, n)
	}
	if len(signal) == n {
		out := make([]float64, n)
		copy(out, signal)
		return out
	}
	if len(signal) == 1 || n == 1 {
		out := make([]float64, n)
		for i := range out {
			out[i] = signal[0]
		}
		return out
	}

	out := make([]float64, n)
	step := float64(len(signal)-1) / float64(n-1)
	for i := 0; i < n; i++ {
		pos := float64(i) * step
		lo := int(pos)
		if lo >= len(signal)-1 {
			out[i] = signal[len(signal)-1]
			continue
		}
		frac := pos - float64(lo)
		out[i] = signal[lo]*(1-frac) + signal[lo+1]*frac
	}
	return out
}
