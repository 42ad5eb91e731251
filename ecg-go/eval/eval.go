// Package eval scores predicted wave triplets against ground truth and
// reconciles repeated inference attempts into a consensus pick.
package eval

import (
	"math"

	"github.com/heartscribe/heartscribe/ecg-go/annot"
)

// KindReport is the per-wave-kind breakdown of a Report.
type KindReport struct {
	Predicted      int     `json:"predicted_count"`
	GroundTruth    int     `json:"ground_truth_count"`
	Matched        int     `json:"matched_count"`
	AvgErrorPixels float64 `json:"average_error_pixels"`
}

// Report is the accuracy analysis of one prediction set.
type Report struct {
	TotalPredicted   int                        `json:"total_predicted"`
	TotalGroundTruth int                        `json:"total_ground_truth"`
	PixelErrors      []float64                  `json:"pixel_errors"`
	MsErrors         []float64                  `json:"temporal_errors_ms"`
	AvgPixelError    float64                    `json:"average_pixel_error"`
	AvgMsError       float64                    `json:"average_temporal_error_ms"`
	PerKind          map[annot.Wave]*KindReport `json:"wave_type_accuracy"`
}

// Accuracy matches each ground-truth triplet to the predicted triplet of the
// same kind whose peak (x2) is nearest, then records the absolute error of
// each of the three coordinates, in pixels and in milliseconds. Unmatched
// ground truth contributes no errors but shows up in the per-kind counts.
func Accuracy(pred, gt []annot.Triplet, msPerPixel float64) *Report {
	rep := &Report{
		TotalPredicted:   len(pred),
		TotalGroundTruth: len(gt),
		PerKind:          make(map[annot.Wave]*KindReport),
	}

	predByKind := make(map[annot.Wave][]annot.Triplet)
	for _, t := range pred {
		predByKind[t.Kind] = append(predByKind[t.Kind], t)
	}
	gtByKind := make(map[annot.Wave][]annot.Triplet)
	for _, t := range gt {
		gtByKind[t.Kind] = append(gtByKind[t.Kind], t)
	}

	kinds := make(map[annot.Wave]bool)
	for k := range predByKind {
		kinds[k] = true
	}
	for k := range gtByKind {
		kinds[k] = true
	}

	for kind := range kinds {
		kr := &KindReport{
			Predicted:   len(predByKind[kind]),
			GroundTruth: len(gtByKind[kind]),
		}
		var kindErrors []float64
		for _, g := range gtByKind[kind] {
			p, ok := closestByPeak(predByKind[kind], g)
			if !ok {
				continue
			}
			kr.Matched++
			errs := []float64{
				math.Abs(float64(g.X1 - p.X1)),
				math.Abs(float64(g.X2 - p.X2)),
				math.Abs(float64(g.X3 - p.X3)),
			}
			kindErrors = append(kindErrors, errs...)
			rep.PixelErrors = append(rep.PixelErrors, errs...)
		}
		if len(kindErrors) > 0 {
			kr.AvgErrorPixels = mean(kindErrors)
		}
		rep.PerKind[kind] = kr
	}

	if len(rep.PixelErrors) > 0 {
		rep.AvgPixelError = mean(rep.PixelErrors)
		rep.AvgMsError = rep.AvgPixelError * msPerPixel
		rep.MsErrors = make([]float64, len(rep.PixelErrors))
		for i, e := range rep.PixelErrors {
			rep.MsErrors[i] = e * msPerPixel
		}
	}
	return rep
}

func closestByPeak(candidates []annot.Triplet, target annot.Triplet) (annot.Triplet, bool) {
	if len(candidates) == 0 {
		return annot.Triplet{}, false
	}
	best := candidates[0]
	bestDist := math.Abs(float64(target.X2 - best.X2))
	for _, c := range candidates[1:] {
		if d := math.Abs(float64(target.X2 - c.X2)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, true
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// Consensus reconciles repeated inference attempts. When at least two
// attempts detect the same number of triplets, coordinates are averaged
// position by position and the attempt with the smallest total deviation
// from that average wins. Otherwise the first non-empty attempt wins.
func Consensus(attempts [][]annot.Triplet) (best int, avg []float64) {
	first := -1
	for i, a := range attempts {
		if len(a) > 0 {
			first = i
			break
		}
	}
	if first < 0 {
		return 0, nil
	}

	var agreeing []int
	arity := len(attempts[first])
	for i, a := range attempts {
		if len(a) == arity {
			agreeing = append(agreeing, i)
		}
	}
	if len(agreeing) < 2 {
		return first, flatten(attempts[first])
	}

	avg = make([]float64, arity*3)
	for _, i := range agreeing {
		for j, v := range flatten(attempts[i]) {
			avg[j] += v
		}
	}
	for j := range avg {
		avg[j] = math.Round(avg[j]/float64(len(agreeing))*10) / 10
	}

	best = agreeing[0]
	minDev := math.Inf(1)
	for _, i := range agreeing {
		var dev float64
		for j, v := range flatten(attempts[i]) {
			dev += math.Abs(v - avg[j])
		}
		if dev < minDev {
			minDev, best = dev, i
		}
	}
	return best, avg
}

func flatten(triplets []annot.Triplet) []float64 {
	out := make([]float64, 0, len(triplets)*3)
	for _, t := range triplets {
		out = append(out, float64(t.X1), float64(t.X2), float64(t.X3))
	}
	return out
}

// Buckets classifies an average pixel error against the clinical precision
// targets used during model development.
type Buckets struct {
	Excellent bool `json:"excellent"` // under 2 pixels
	Good      bool `json:"good"`      // under 5 pixels
}

func Bucket(avgPixelError float64) Buckets {
	return Buckets{
		Excellent: avgPixelError < 2.0,
		Good:      avgPixelError < 5.0,
	}
}
