package classify

// genericCategories are vendor place types carrying no business-vertical
// signal: administrative, geographic, and catch-all tags that appear on
// nearly every record. They are stripped from classified businesses.
var genericCategories = map[string]struct{}{
	"point_of_interest":           {},
	"establishment":               {},
	"premise":                     {},
	"subpremise":                  {},
	"street_address":              {},
	"street_number":               {},
	"route":                       {},
	"intersection":                {},
	"floor":                       {},
	"room":                        {},
	"geocode":                     {},
	"plus_code":                   {},
	"postal_code":                 {},
	"postal_code_prefix":          {},
	"postal_code_suffix":          {},
	"postal_town":                 {},
	"political":                   {},
	"country":                     {},
	"locality":                    {},
	"sublocality":                 {},
	"sublocality_level_1":         {},
	"sublocality_level_2":         {},
	"sublocality_level_3":         {},
	"sublocality_level_4":         {},
	"sublocality_level_5":         {},
	"neighborhood":                {},
	"colloquial_area":             {},
	"administrative_area_level_1": {},
	"administrative_area_level_2": {},
	"administrative_area_level_3": {},
	"administrative_area_level_4": {},
	"administrative_area_level_5": {},
}

// FilterCategories removes generic/administrative tags from a place's type
// list. Relative order of surviving tags is preserved; duplicates are not
// collapsed.
func FilterCategories(types []string) []string {
	if len(types) == 0 {
		return nil
	}
	out := make([]string, 0, len(types))
	for _, t := range types {
		if _, generic := genericCategories[t]; generic {
			continue
		}
		out = append(out, t)
	}
	return out
}
