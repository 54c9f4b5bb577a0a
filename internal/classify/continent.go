package classify

import "strings"

// Continent is a reporting-only bucket derived at read time; it is never
// persisted on the job row.
type Continent string

// Continent constants. Remote and Other absorb locations with no usable
// textual signal.
const (
	ContinentAfrica       Continent = "Africa"
	ContinentAntarctica   Continent = "Antarctica"
	ContinentAsia         Continent = "Asia"
	ContinentEurope       Continent = "Europe"
	ContinentNorthAmerica Continent = "North America"
	ContinentOceania      Continent = "Oceania"
	ContinentSouthAmerica Continent = "South America"
	ContinentRemote       Continent = "Remote"
	ContinentOther        Continent = "Other"
)

var africaKeywords = []string{
	"south africa", "cape town", "johannesburg", "nigeria", "lagos",
	"kenya", "nairobi", "egypt", "cairo", "ghana", "accra", "morocco",
	"africa",
}

var antarcticaKeywords = []string{"antarctica", "mcmurdo"}

var oceaniaKeywords = []string{
	"australia", "sydney", "melbourne", "brisbane", "perth",
	"new zealand", "auckland", "wellington", "fiji",
}

var southAmericaKeywords = []string{
	"brazil", "são paulo", "sao paulo", "rio de janeiro",
	"argentina", "buenos aires", "colombia", "bogotá", "bogota",
	"chile", "santiago", "peru", "lima", "uruguay", "montevideo",
	"ecuador", "venezuela",
}

var asiaKeywords = []string{
	"singapore", "japan", "tokyo", "osaka", "india", "bangalore",
	"bengaluru", "mumbai", "delhi", "hyderabad", "pune", "china",
	"shanghai", "beijing", "shenzhen", "hong kong", "taiwan", "taipei",
	"south korea", "seoul", "vietnam", "hanoi", "ho chi minh",
	"thailand", "bangkok", "indonesia", "jakarta", "philippines",
	"manila", "malaysia", "kuala lumpur", "israel", "tel aviv",
	"united arab emirates", "dubai", "abu dhabi", "saudi arabia",
	"riyadh", "qatar", "doha", "turkey", "istanbul",
}

var northAmericaKeywords = []string{
	"canada", "toronto", "vancouver", "montreal", "ottawa", "calgary",
	"mexico", "mexico city", "guadalajara", "monterrey",
	"costa rica", "panama", "guatemala",
}

// regionContinent maps a coarse region to its continent when the raw
// location text carries no recognizable place name.
var regionContinent = map[Region]Continent{
	RegionEU:     ContinentEurope,
	RegionUK:     ContinentEurope,
	RegionUS:     ContinentNorthAmerica,
	RegionRemote: ContinentRemote,
	RegionAPAC:   ContinentAsia,
	RegionLATAM:  ContinentSouthAmerica,
	RegionOther:  ContinentOther,
}

// ClassifyContinent derives a continent from the raw location text, falling
// back to the region mapping when nothing matches. The small gazetteers
// (Antarctica, Africa, Oceania, South America) run before the broad Asia,
// Europe, and North America lists so that e.g. "Georgia" the US state is not
// shadowed and "Perth, Australia" does not hit an Asian city list first.
func ClassifyContinent(locationRaw string, regionFallback Region) Continent {
	if locationRaw == "" {
		return fallbackContinent(regionFallback)
	}
	loc := strings.ToLower(locationRaw)

	switch {
	case containsAny(loc, remoteKeywords):
		return ContinentRemote
	case containsAny(loc, antarcticaKeywords):
		return ContinentAntarctica
	case containsAny(loc, africaKeywords):
		return ContinentAfrica
	case containsAny(loc, oceaniaKeywords):
		return ContinentOceania
	case containsAny(loc, southAmericaKeywords):
		return ContinentSouthAmerica
	case containsAny(loc, asiaKeywords):
		return ContinentAsia
	case containsAny(loc, ukKeywords),
		containsAny(loc, euCountries),
		containsAny(loc, euCities):
		return ContinentEurope
	case containsAny(loc, usStates),
		containsAny(loc, usCities),
		containsAny(loc, northAmericaKeywords):
		return ContinentNorthAmerica
	}
	return fallbackContinent(regionFallback)
}

func fallbackContinent(region Region) Continent {
	if c, ok := regionContinent[region]; ok {
		return c
	}
	return ContinentOther
}

// countryNames maps lowercase location substrings to a display country name.
// Ordered longest-match-first inside ExtractCountry via the keyed slices.
var countryNames = []struct {
	keywords []string
	name     string
}{
	{[]string{"united kingdom", "london", "manchester", "edinburgh", "england", "scotland", "wales", "great britain"}, "United Kingdom"},
	{[]string{"germany", "berlin", "munich", "hamburg", "frankfurt", "cologne"}, "Germany"},
	{[]string{"france", "paris", "lyon", "marseille", "bordeaux"}, "France"},
	{[]string{"netherlands", "amsterdam", "rotterdam", "utrecht", "the hague"}, "Netherlands"},
	{[]string{"spain", "madrid", "barcelona", "valencia", "seville"}, "Spain"},
	{[]string{"italy", "milan", "rome", "florence", "turin"}, "Italy"},
	{[]string{"sweden", "stockholm", "gothenburg"}, "Sweden"},
	{[]string{"denmark", "copenhagen", "aarhus"}, "Denmark"},
	{[]string{"finland", "helsinki"}, "Finland"},
	{[]string{"norway", "oslo"}, "Norway"},
	{[]string{"poland", "warsaw", "krakow", "wroclaw"}, "Poland"},
	{[]string{"portugal", "lisbon", "porto"}, "Portugal"},
	{[]string{"ireland", "dublin"}, "Ireland"},
	{[]string{"switzerland", "zurich", "geneva", "bern"}, "Switzerland"},
	{[]string{"austria", "vienna"}, "Austria"},
	{[]string{"canada", "toronto", "vancouver", "montreal", "ottawa", "calgary"}, "Canada"},
	{[]string{"united states", "usa", "u.s.", "new york", "san francisco", "seattle", "boston", "austin", "chicago", "denver", "nyc"}, "United States"},
	{[]string{"australia", "sydney", "melbourne", "brisbane", "perth"}, "Australia"},
	{[]string{"singapore"}, "Singapore"},
	{[]string{"india", "bangalore", "bengaluru", "mumbai", "delhi"}, "India"},
	{[]string{"japan", "tokyo", "osaka"}, "Japan"},
	{[]string{"brazil", "são paulo", "sao paulo", "rio de janeiro"}, "Brazil"},
	{[]string{"mexico"}, "Mexico"},
	{[]string{"israel", "tel aviv"}, "Israel"},
}

// ExtractCountry returns a display country name for reporting, "Remote" for
// remote-flagged locations, or "" when nothing is recognized.
func ExtractCountry(locationRaw string, regionFallback Region) string {
	if locationRaw == "" {
		if regionFallback == RegionRemote {
			return "Remote"
		}
		return ""
	}
	loc := strings.ToLower(locationRaw)
	if containsAny(loc, remoteKeywords) {
		return "Remote"
	}
	for _, entry := range countryNames {
		if containsAny(loc, entry.keywords) {
			return entry.name
		}
	}
	return ""
}
