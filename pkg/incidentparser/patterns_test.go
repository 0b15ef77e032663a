package incidentparser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/travigo/incidentparser/pkg/ctdf"
)

func TestContainsStopInformation(t *testing.T) {
	tests := []struct {
		text     string
		expected bool
	}{
		{"Signal fault * Central (H) 08:15 (H) North 08:40", true},
		{"Signal fault * Central ( H ) 8:5", true},
		{"(H) 12:30", true},
		{"Stellwerksstörung (H) 12:30 ohne Trennzeichen", true},
		{"Verspätung * Heumarkt 09:12 (H)", false},
		{"Verspätung * Heumarkt 09:12", false},
		{"Central (X) 08:15", false},
		{"Central (  H  ) 08:15", false},
		{"Central (h) 08:15", false},
		{"Störung * Neumarkt 08:15 (\u00a0H) Heumarkt 08:40", true},
		{"Störung * Neumarkt 08:15\u00a0(H\u00a0)\u00a0Heumarkt 08:40", true},
		{"Lift out of service *", false},
		{"", false},
	}

	patterns := NewPatterns()

	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.expected, patterns.ContainsStopInformation(tc.text))
		})
	}
}

func TestSplitStops(t *testing.T) {
	tests := []struct {
		blob     string
		expected []string
	}{
		{"Bensberg 10:00 (H) Refrath 10:04", []string{"Bensberg 10:00", "Refrath 10:04"}},
		{"Klettenberg 07:05 (H)Efferen 07:09(H) Hermülheim 07:15", []string{"Klettenberg 07:05", "Efferen 07:09", "Hermülheim 07:15"}},
		{"(H) Heumarkt 09:12", []string{"", "Heumarkt 09:12"}},
		{"Heumarkt 09:12 (H)", []string{"Heumarkt 09:12", ""}},
		{"Köln Hbf 22:10 ( H ) Breslauer Platz 22:14", []string{"Köln Hbf 22:10", "Breslauer Platz 22:14"}},
		{"Heumarkt 09:12", []string{"Heumarkt 09:12"}},
		{"Neumarkt 08:15\u00a0(\u00a0H)\u00a0Heumarkt 08:40", []string{"Neumarkt 08:15", "Heumarkt 08:40"}},
		{"Neumarkt 08:15\u3000(H)\u2009Heumarkt 08:40", []string{"Neumarkt 08:15", "Heumarkt 08:40"}},
	}

	patterns := NewPatterns()

	for _, tc := range tests {
		t.Run(tc.blob, func(t *testing.T) {
			assert.Equal(t, tc.expected, patterns.SplitStops(tc.blob))
		})
	}
}

func TestExtractStop(t *testing.T) {
	tests := []struct {
		candidate string
		expected  ctdf.StopTime
		ok        bool
	}{
		{"Central 08:15", ctdf.StopTime{Station: "Central", Time: "08:15"}, true},
		{"Weiden West 14:30 h", ctdf.StopTime{Station: "Weiden West", Time: "14:30 h"}, true},
		{"Weiden West 14:30h", ctdf.StopTime{Station: "Weiden West", Time: "14:30h"}, true},
		{"Breslauer Platz/Hbf 22:14 * Weitere Infos folgen", ctdf.StopTime{Station: "Breslauer Platz/Hbf", Time: "22:14"}, true},
		{"Chorweiler 5:45", ctdf.StopTime{Station: "Chorweiler", Time: "5:45"}, true},
		{"Neumarkt\u00a008:15\u00a0h", ctdf.StopTime{Station: "Neumarkt", Time: "08:15\u00a0h"}, true},
		{"Neumarkt 08:15\u202fh", ctdf.StopTime{Station: "Neumarkt", Time: "08:15\u202fh"}, true},
		{"99", ctdf.StopTime{}, false},
		{"08:15", ctdf.StopTime{}, false},
		{"Baustelle", ctdf.StopTime{}, false},
		{"", ctdf.StopTime{}, false},
	}

	patterns := NewPatterns()

	for _, tc := range tests {
		t.Run(tc.candidate, func(t *testing.T) {
			stop, ok := patterns.ExtractStop(tc.candidate)

			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, stop)
		})
	}
}

func TestCleanProse(t *testing.T) {
	patterns := NewPatterns()

	assert.Equal(t, "Lift out of service.", patterns.CleanProse("Lift out of service *"))
	assert.Equal(t, "Erste Meldung. Zweite Meldung", patterns.CleanProse(" Erste Meldung \t*\t Zweite Meldung "))
	assert.Equal(t, ".", patterns.CleanProse("*"))
	assert.Equal(t, "Aufzug außer Betrieb.", patterns.CleanProse("Aufzug außer Betrieb\u00a0*"))
	assert.Equal(t, "Erste Meldung. Zweite Meldung", patterns.CleanProse("Erste Meldung\u00a0*\u00a0Zweite Meldung"))
}

func FuzzContainsStopInformation(f *testing.F) {
	f.Add("Signal fault * Central (H) 08:15")
	f.Add("Lift out of service *")

	patterns := NewPatterns()

	f.Fuzz(func(t *testing.T, text string) {
		if patterns.ContainsStopInformation(text) && !strings.Contains(text, "H") {
			t.Fatalf("%q classified as structured without a marker", text)
		}
	})
}

func FuzzSplitStops(f *testing.F) {
	f.Add("Bensberg 10:00 (H) Refrath 10:04")
	f.Add("(H)(H)")

	patterns := NewPatterns()

	f.Fuzz(func(t *testing.T, blob string) {
		for _, piece := range patterns.SplitStops(blob) {
			if patterns.stopSeparator.MatchString(piece) {
				t.Fatalf("marker left in piece %q of %q", piece, blob)
			}
		}
	})
}

func FuzzExtractStop(f *testing.F) {
	f.Add("Central 08:15")
	f.Add("Weiden West 14:30 h")
	f.Add("99")

	patterns := NewPatterns()

	f.Fuzz(func(t *testing.T, candidate string) {
		stop, ok := patterns.ExtractStop(candidate)
		if !ok {
			return
		}

		if stop.Station != strings.TrimSpace(stop.Station) || stop.Time != strings.TrimSpace(stop.Time) {
			t.Fatalf("untrimmed stop %#v from %q", stop, candidate)
		}
		if !strings.Contains(stop.Time, ":") {
			t.Fatalf("time %q without separator from %q", stop.Time, candidate)
		}
	})
}
