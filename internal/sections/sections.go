// Package sections is the single owner of the section table: the age-banded
// cohorts children are enrolled into. Everything that needs a section label or
// age range reads it from here.
package sections

type Section struct {
	Code         string `json:"code"`
	Label        string `json:"label"`
	MinAgeMonths int    `json:"min_age_months"`
	MaxAgeMonths int    `json:"max_age_months"`
}

// All lists the sections in enrollment order (youngest first).
var All = []Section{
	{Code: "bebes", Label: "Bébés", MinAgeMonths: 3, MaxAgeMonths: 12},
	{Code: "trotteurs", Label: "Trotteurs", MinAgeMonths: 12, MaxAgeMonths: 24},
	{Code: "moyens", Label: "Moyens", MinAgeMonths: 24, MaxAgeMonths: 36},
	{Code: "grands", Label: "Grands", MinAgeMonths: 36, MaxAgeMonths: 48},
}

var byCode = func() map[string]Section {
	m := make(map[string]Section, len(All))
	for _, s := range All {
		m[s.Code] = s
	}
	return m
}()

func ByCode(code string) (Section, bool) {
	s, ok := byCode[code]
	return s, ok
}

func Valid(code string) bool {
	_, ok := byCode[code]
	return ok
}

// Label returns the display label for a code, or the code itself when unknown
// so stale data still renders.
func Label(code string) string {
	if s, ok := byCode[code]; ok {
		return s.Label
	}
	return code
}

// ForAgeMonths returns the section whose band contains the given age.
// Bands are [min, max) except the last, which is inclusive of its upper bound.
func ForAgeMonths(months int) (Section, bool) {
	for i, s := range All {
		last := i == len(All)-1
		if months >= s.MinAgeMonths && (months < s.MaxAgeMonths || (last && months == s.MaxAgeMonths)) {
			return s, true
		}
	}
	return Section{}, false
}
