package hijri

// Correction shifts the computed Hijri year when the raw year is below
// BelowYear. Corrections are empirical patches tied to an era, so every
// applied correction is reported on the resulting Date.
type Correction struct {
	Name      string
	BelowYear int
	Offset    int
}

// Applies reports whether the correction changes rawYear.
func (c Correction) Applies(rawYear int) bool {
	return rawYear < c.BelowYear
}

// LegacyDriftCorrection reproduces the historical "+6 below 1440" patch.
// It was tuned against dates around 1445-1446 AH and makes dates before
// Muharram 1440 (September 2018) come out six years late.
var LegacyDriftCorrection = Correction{
	Name:      "legacy-1440",
	BelowYear: 1440,
	Offset:    6,
}
