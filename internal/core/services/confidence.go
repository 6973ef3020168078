package services

import "math"

// Aggregation weights for the overall confidence score.
const (
	weightOCRQuality = 0.3
	weightFieldMean  = 0.5
	weightVendor     = 0.2
)

// Review bands surfaced to the caller alongside the score. The score itself
// is advisory and never blocks confirmation.
const (
	BandLikelyCorrect     = 70
	BandReviewRecommended = 40
)

// AggregateConfidence combines the recognizer-reported quality (0-100, nil
// when the engine reports none), the mean per-field extraction confidence
// (0-1) and the vendor resolution outcome into one score in [0,100].
//
// A missing quality signal re-normalizes its weight onto the field mean so an
// engine that simply doesn't report quality does not pull every document into
// the review band.
func AggregateConfidence(ocrQuality *float64, fieldMean float64, resolution VendorResolution) int {
	bonus := 0.0
	switch {
	case resolution.Matched():
		bonus = 1.0
	case resolution.Created:
		bonus = 0.5
	}

	var score float64
	if ocrQuality != nil {
		quality := clamp(*ocrQuality, 0, 100)
		score = weightOCRQuality*quality + weightFieldMean*100*fieldMean + weightVendor*100*bonus
	} else {
		score = (weightOCRQuality+weightFieldMean)*100*fieldMean + weightVendor*100*bonus
	}

	return int(math.Round(clamp(score, 0, 100)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
