// Package security detects dangerous shell commands and manages the
// tactile confirmation sessions that gate their execution.
package security

import (
	"regexp"

	"github.com/tos-desktop/tos/pkg/types"
)

// Pattern is one entry of the ordered dangerous-command table: a regex,
// its risk level, a human warning, the required tactile method, and
// whether the user may override (Critical patterns never allow override).
type Pattern struct {
	Name          string
	Regex         *regexp.Regexp
	Risk          types.RiskLevel
	Warning       string
	Method        types.TactileMethod
	AllowOverride bool
}

// DefaultPatterns is the default ordered dangerous-command table. The
// first matching pattern determines risk.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Name:    "rm_rf_root",
			Regex:   regexp.MustCompile(`rm\s+-rf\s+/(\s|$)`),
			Risk:    types.RiskCritical,
			Warning: "This will recursively delete the root filesystem.",
			Method: types.TactileMethod{
				Kind:          types.MethodMultiButton,
				RequiredCount: 3,
				Buttons:       []string{"ctrl", "alt", "delete"},
			},
			AllowOverride: false,
		},
		{
			Name:    "dd_to_disk",
			Regex:   regexp.MustCompile(`dd\s+.*of=/dev/[sh]d[a-z]?\d*`),
			Risk:    types.RiskCritical,
			Warning: "This will overwrite a raw disk device.",
			Method: types.TactileMethod{
				Kind:           types.MethodVoice,
				VoicePhrase:    "confirm disk overwrite",
				VoiceThreshold: 0.9,
			},
			AllowOverride: false,
		},
		{
			Name:    "mkfs_format",
			Regex:   regexp.MustCompile(`mkfs(\.\w+)?\s+`),
			Risk:    types.RiskCritical,
			Warning: "This will format a filesystem.",
			Method: types.TactileMethod{
				Kind:            types.MethodSlider,
				SliderFraction:  1.0,
				SliderDirection: "right",
			},
			AllowOverride: false,
		},
		{
			Name:    "fork_bomb",
			Regex:   regexp.MustCompile(`:\(\)\s*\{\s*:\|:&\s*\}\s*;\s*:`),
			Risk:    types.RiskHigh,
			Warning: "This is a fork bomb; it will exhaust process resources.",
			Method: types.TactileMethod{
				Kind:          types.MethodPattern,
				PatternPoints: []string{"tl", "br", "tr", "bl"},
			},
			AllowOverride: true,
		},
		{
			Name:    "curl_pipe_sh",
			Regex:   regexp.MustCompile(`(curl|wget)\s+.*\|\s*(sh|bash)`),
			Risk:    types.RiskMedium,
			Warning: "This pipes a remote script directly into a shell.",
			Method: types.TactileMethod{
				Kind:       types.MethodHold,
				HoldMillis: 1500,
				HoldTarget: "confirm",
			},
			AllowOverride: true,
		},
	}
}

// Matcher evaluates a command against an ordered pattern table.
type Matcher struct {
	patterns []Pattern
}

// NewMatcher returns a Matcher over the given ordered patterns.
func NewMatcher(patterns []Pattern) *Matcher {
	return &Matcher{patterns: patterns}
}

// Match returns the first pattern matching command, if any.
func (m *Matcher) Match(command string) (Pattern, bool) {
	for _, p := range m.patterns {
		if p.Regex.MatchString(command) {
			return p, true
		}
	}
	return Pattern{}, false
}
