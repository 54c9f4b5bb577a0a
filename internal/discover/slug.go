package discover

import "strings"

// legalSuffixes are corporate-form tokens stripped from a company name
// before slugging; "Acme Labs Inc." should slug as acmelabs, not acmelabsinc.
var legalSuffixes = map[string]struct{}{
	"inc": {}, "llc": {}, "ltd": {}, "limited": {}, "corp": {},
	"gmbh": {}, "ab": {}, "bv": {}, "sa": {}, "plc": {}, "co": {},
}

// Slugify derives candidate board slugs from a company name: an
// alphanumeric-only variant and a hyphenated variant, deduplicated.
func Slugify(name string) []string {
	tokens := tokenize(name)
	if len(tokens) == 0 {
		return nil
	}

	joined := strings.Join(tokens, "")
	hyphenated := strings.Join(tokens, "-")

	if joined == hyphenated {
		return []string{joined}
	}
	return []string{joined, hyphenated}
}

// tokenize lowercases, splits on non-alphanumeric runs, and drops legal
// suffixes from the tail.
func tokenize(name string) []string {
	lowered := strings.ToLower(name)
	fields := strings.FieldsFunc(lowered, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})

	for len(fields) > 1 {
		if _, ok := legalSuffixes[fields[len(fields)-1]]; !ok {
			break
		}
		fields = fields[:len(fields)-1]
	}
	return fields
}
