// Package classify provides pure, deterministic classification of raw job
// posting fields: geographic region, continent, seniority band, role
// relevance, and date normalization. No I/O.
package classify

import "strings"

// Region is a coarse geographic bucket used for filtering and stats.
type Region string

// Region constants cover the markets the aggregator tracks.
const (
	RegionEU     Region = "EU"
	RegionUS     Region = "US"
	RegionUK     Region = "UK"
	RegionRemote Region = "REMOTE"
	RegionAPAC   Region = "APAC"
	RegionLATAM  Region = "LATAM"
	RegionOther  Region = "OTHER"
)

var remoteKeywords = []string{
	"remote", "worldwide", "anywhere", "distributed", "global",
	"fully remote", "work from home", "wfh", "location flexible",
}

var euCountries = []string{
	"germany", "france", "netherlands", "spain", "italy", "sweden",
	"denmark", "finland", "norway", "poland", "portugal", "belgium",
	"austria", "switzerland", "ireland", "czech republic", "czechia",
	"romania", "hungary", "greece", "slovakia", "croatia", "bulgaria",
	"estonia", "latvia", "lithuania", "luxembourg", "malta", "cyprus",
	"slovenia", "europe", "european union",
}

var euCities = []string{
	"berlin", "munich", "hamburg", "frankfurt", "cologne", "düsseldorf",
	"paris", "lyon", "marseille", "bordeaux",
	"amsterdam", "rotterdam", "utrecht", "the hague",
	"madrid", "barcelona", "valencia", "seville",
	"milan", "rome", "florence", "turin",
	"stockholm", "gothenburg", "malmö",
	"copenhagen", "aarhus",
	"helsinki", "oslo",
	"warsaw", "krakow", "wroclaw",
	"lisbon", "porto",
	"brussels", "antwerp",
	"vienna", "zurich", "geneva", "bern",
	"dublin", "prague", "budapest", "bucharest",
	"riga", "tallinn", "vilnius",
	"luxembourg city",
}

var usStates = []string{
	"alabama", "alaska", "arizona", "arkansas", "california", "colorado",
	"connecticut", "delaware", "florida", "georgia", "hawaii", "idaho",
	"illinois", "indiana", "iowa", "kansas", "kentucky", "louisiana",
	"maine", "maryland", "massachusetts", "michigan", "minnesota",
	"mississippi", "missouri", "montana", "nebraska", "nevada",
	"new hampshire", "new jersey", "new mexico", "new york", "north carolina",
	"north dakota", "ohio", "oklahoma", "oregon", "pennsylvania",
	"rhode island", "south carolina", "south dakota", "tennessee", "texas",
	"utah", "vermont", "virginia", "washington", "west virginia",
	"wisconsin", "wyoming", "district of columbia",
}

var usCities = []string{
	"new york", "san francisco", "los angeles", "chicago", "seattle",
	"boston", "austin", "denver", "atlanta", "miami", "dallas",
	"houston", "phoenix", "portland", "san jose", "san diego",
	"minneapolis", "detroit", "washington dc", "nyc", "sf",
	"united states", "usa", "u.s.", "u.s.a.",
}

var ukKeywords = []string{
	"london", "manchester", "birmingham", "leeds", "glasgow", "edinburgh",
	"bristol", "liverpool", "united kingdom", "uk", "england", "scotland",
	"wales", "great britain",
}

var apacKeywords = []string{
	"singapore", "sydney", "melbourne", "australia", "new zealand",
	"auckland", "tokyo", "japan", "india", "bangalore", "bengaluru",
	"mumbai", "delhi", "hong kong", "seoul", "south korea", "apac",
}

var latamKeywords = []string{
	"brazil", "são paulo", "sao paulo", "mexico", "mexico city",
	"argentina", "buenos aires", "colombia", "bogotá", "bogota",
	"chile", "santiago", "latam", "latin america",
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// Region classifies a raw location string into a coarse region bucket.
// Remote signals win over everything else; UK is checked before EU so
// "London" never lands in the EU bucket.
func ClassifyRegion(locationRaw string) Region {
	if locationRaw == "" {
		return RegionOther
	}
	loc := strings.ToLower(locationRaw)

	switch {
	case containsAny(loc, remoteKeywords):
		return RegionRemote
	case containsAny(loc, ukKeywords):
		return RegionUK
	case containsAny(loc, euCountries) || containsAny(loc, euCities):
		return RegionEU
	case containsAny(loc, usStates) || containsAny(loc, usCities):
		return RegionUS
	case containsAny(loc, apacKeywords):
		return RegionAPAC
	case containsAny(loc, latamKeywords):
		return RegionLATAM
	}
	return RegionOther
}
