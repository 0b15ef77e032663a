package incidentparser

import (
	"regexp"
	"strings"

	"github.com/travigo/incidentparser/pkg/ctdf"
)

// Patterns holds the compiled expressions for the "(H)" stop convention used in
// the incident texts, e.g. "Signal fault * Neumarkt 14:30 (H) Heumarkt 14:34".
type Patterns struct {
	stopInformation *regexp.Regexp
	stopSeparator   *regexp.Regexp
	stop            *regexp.Regexp
	nameOnly        *regexp.Regexp
	leadingTime     *regexp.Regexp

	trailingBullet *regexp.Regexp
	inlineBullet   *regexp.Regexp
}

// Character classes matching the Unicode notion of whitespace and digits, so a
// no-break space from scraped HTML counts as a space.
const (
	space    = `[\s\p{Z}\x{85}\x{1c}-\x{1f}]`
	digit    = `\p{Nd}`
	nonDigit = `\P{Nd}`
)

func NewPatterns() *Patterns {
	marker := space + `*\(` + space + `?H` + space + `?\)` + space + `*`

	return &Patterns{
		stopInformation: regexp.MustCompile(`^.*` + marker + `.*` + digit + `{1,2}:` + digit + `{1,2}`),
		stopSeparator:   regexp.MustCompile(marker),
		stop:            regexp.MustCompile(`(` + nonDigit + `+)` + space + `*(` + digit + `+:` + digit + `+` + space + `?(` + space + `?h` + space + `?)?)`),
		nameOnly:        regexp.MustCompile(`^` + nonDigit + `+$`),
		leadingTime:     regexp.MustCompile(`^` + digit + `{1,2}:` + digit + `{1,2}`),

		trailingBullet: regexp.MustCompile(space + `*\*$`),
		inlineBullet:   regexp.MustCompile(space + `+\*` + space + `+`),
	}
}

// ContainsStopInformation reports whether the text has a stop marker followed
// somewhere later by a time.
func (p *Patterns) ContainsStopInformation(text string) bool {
	return p.stopInformation.MatchString(text)
}

// SplitStops cuts a stops blob on every stop marker. The markers are dropped and
// empty pieces are kept, callers decide what to skip.
func (p *Patterns) SplitStops(blob string) []string {
	return p.stopSeparator.Split(blob, -1)
}

// ExtractStop reads a single "<name> <HH:MM>[ h]" candidate.
func (p *Patterns) ExtractStop(candidate string) (ctdf.StopTime, bool) {
	match := p.stop.FindStringSubmatch(candidate)
	if match == nil {
		return ctdf.StopTime{}, false
	}

	return ctdf.StopTime{
		Station: strings.TrimSpace(match[1]),
		Time:    strings.TrimSpace(match[2]),
	}, true
}

// CleanProse turns stray bullet markers into sentence breaks.
func (p *Patterns) CleanProse(text string) string {
	text = strings.TrimSpace(text)
	text = p.trailingBullet.ReplaceAllLiteralString(text, ". ")
	text = p.inlineBullet.ReplaceAllLiteralString(text, ". ")

	return strings.TrimSpace(text)
}

func (p *Patterns) isNameOnly(candidate string) bool {
	return p.nameOnly.MatchString(candidate)
}

func (p *Patterns) startsWithTime(candidate string) bool {
	return p.leadingTime.MatchString(candidate)
}
