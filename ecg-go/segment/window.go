package segment

// Window is one fixed-duration slice of a single lead's signal. Start and End
// are sample indices into the full recording, End exclusive.
type Window struct {
	Index   int
	Start   int
	End     int
	Samples []float64
}

// Windows slices a lead signal into consecutive fixed-duration windows of
// windowSec seconds at fs Hz. A trailing partial window is dropped.
func Windows(signal []float64, fs, windowSec int) []Window {
	perWindow := fs * windowSec
	if perWindow <= 0 {
		return nil
	}

	n := len(signal) / perWindow
	out := make([]Window, 0, n)
	for w := 0; w < n; w++ {
		start := w * perWindow
		end := start + perWindow
		out = append(out, Window{
			Index:   w,
			Start:   start,
			End:     end,
			Samples: signal[start:end],
		})
	}
	return out
}
