// Package slug derives canonical merchant join keys from display names.
//
// The same key is produced from an order's merchant name and from the
// merchant segment of an ad campaign name, so the two data sources can be
// joined even when the upstream spellings differ in case or punctuation.
package slug

// Make lowercases name and strips every character that is not an ASCII
// letter or digit. It is a total, locale-independent function; empty input
// yields the empty string.
//
//	Make("Screwfix - FR") == "screwfixfr"
//	Make("Champion US")   == "championus"
func Make(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			out = append(out, c)
		case c >= 'A' && c <= 'Z':
			out = append(out, c+('a'-'A'))
		}
	}
	return string(out)
}
