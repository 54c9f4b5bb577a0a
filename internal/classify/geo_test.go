package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRegion_RemoteWinsOverCountry(t *testing.T) {
	tests := []struct {
		location string
		expected Region
	}{
		{"Remote, Germany", RegionRemote},
		{"Fully Remote - US", RegionRemote},
		{"Anywhere", RegionRemote},
		{"Work from home (UK)", RegionRemote},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyRegion(tt.location))
		})
	}
}

func TestClassifyRegion_Buckets(t *testing.T) {
	tests := []struct {
		location string
		expected Region
	}{
		{"Berlin, Germany", RegionEU},
		{"Paris", RegionEU},
		{"London", RegionUK},
		{"Manchester, England", RegionUK},
		{"New York, NY", RegionUS},
		{"San Francisco", RegionUS},
		{"Austin, Texas", RegionUS},
		{"Singapore", RegionAPAC},
		{"Sydney, Australia", RegionAPAC},
		{"São Paulo, Brazil", RegionLATAM},
		{"Timbuktu", RegionOther},
		{"", RegionOther},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyRegion(tt.location))
		})
	}
}

func TestClassifyRegion_UKBeforeEU(t *testing.T) {
	// "London" must never land in the EU bucket even though the city sits in
	// a continent-wide gazetteer too.
	assert.Equal(t, RegionUK, ClassifyRegion("London, United Kingdom"))
}

func TestClassifyContinent_SmallGazetteersFirst(t *testing.T) {
	tests := []struct {
		location string
		region   Region
		expected Continent
	}{
		{"Cape Town, South Africa", RegionOther, ContinentAfrica},
		{"McMurdo Station, Antarctica", RegionOther, ContinentAntarctica},
		{"Perth, Australia", RegionAPAC, ContinentOceania},
		{"Buenos Aires, Argentina", RegionLATAM, ContinentSouthAmerica},
		{"Tokyo, Japan", RegionAPAC, ContinentAsia},
		{"Berlin", RegionEU, ContinentEurope},
		{"Toronto, Canada", RegionOther, ContinentNorthAmerica},
		{"Remote", RegionRemote, ContinentRemote},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyContinent(tt.location, tt.region))
		})
	}
}

func TestClassifyContinent_RegionFallback(t *testing.T) {
	tests := []struct {
		location string
		region   Region
		expected Continent
	}{
		{"", RegionEU, ContinentEurope},
		{"", RegionUK, ContinentEurope},
		{"", RegionUS, ContinentNorthAmerica},
		{"HQ", RegionAPAC, ContinentAsia},
		{"HQ", RegionLATAM, ContinentSouthAmerica},
		{"", RegionRemote, ContinentRemote},
		{"", RegionOther, ContinentOther},
	}

	for _, tt := range tests {
		t.Run(string(tt.region), func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyContinent(tt.location, tt.region))
		})
	}
}

func TestExtractCountry(t *testing.T) {
	tests := []struct {
		location string
		region   Region
		expected string
	}{
		{"Berlin, Germany", RegionEU, "Germany"},
		{"London", RegionUK, "United Kingdom"},
		{"New York, NY", RegionUS, "United States"},
		{"Remote (EMEA)", RegionRemote, "Remote"},
		{"", RegionRemote, "Remote"},
		{"Atlantis", RegionOther, ""},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractCountry(tt.location, tt.region))
		})
	}
}
