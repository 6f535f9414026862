package excel

import "strings"

// LocateSheet finds canonical among sheetNames, trying the name as given,
// lowercased, uppercased, and with spaces replaced by "_" and "-". Matching
// is exact and case-sensitive; the first candidate present wins.
func LocateSheet(sheetNames []string, canonical string) (string, bool) {
	present := make(map[string]bool, len(sheetNames))
	for _, name := range sheetNames {
		present[name] = true
	}

	candidates := []string{
		canonical,
		strings.ToLower(canonical),
		strings.ToUpper(canonical),
		strings.ReplaceAll(canonical, " ", "_"),
		strings.ReplaceAll(canonical, " ", "-"),
	}
	for _, candidate := range candidates {
		if present[candidate] {
			return candidate, true
		}
	}
	return "", false
}
