package rating

// CoefficientTable resolves bonus coefficients by region. Regions without an
// entry fall back to Default; a zero Default means no adjustment at all.
type CoefficientTable struct {
	ByRegion map[string]Coefficients
	Default  Coefficients
}

// ForRegion returns the coefficients applying to a farmer's region.
func (t CoefficientTable) ForRegion(region string) Coefficients {
	if c, ok := t.ByRegion[region]; ok {
		return c
	}
	return t.Default
}
