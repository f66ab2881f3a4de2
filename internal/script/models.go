// Package script provides the read-only call script: ordered stages, their
// checklist points, and bilingual text.
package script

import (
	"fmt"
	"strings"
	"time"
)

// Locale identifies one of the supported display languages.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleVN Locale = "vn"
)

// Locales returns every supported locale. Each Text must define all of them.
func Locales() []Locale {
	return []Locale{LocaleEN, LocaleVN}
}

// ParseLocale maps user input ("en", "VN", "vi") to a supported locale.
func ParseLocale(s string) (Locale, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "english":
		return LocaleEN, nil
	case "vn", "vi", "vietnamese":
		return LocaleVN, nil
	}
	return "", fmt.Errorf("unsupported language %q (want en or vn)", s)
}

// Other returns the locale a language toggle switches to.
func (l Locale) Other() Locale {
	if l == LocaleEN {
		return LocaleVN
	}
	return LocaleEN
}

// Text is a string per locale.
type Text map[Locale]string

// Get returns the text for l, falling back to English and then to any value.
func (t Text) Get(l Locale) string {
	if s, ok := t[l]; ok && s != "" {
		return s
	}
	if s, ok := t[LocaleEN]; ok && s != "" {
		return s
	}
	for _, s := range t {
		if s != "" {
			return s
		}
	}
	return ""
}

// Validate reports the first supported locale that is missing or blank.
func (t Text) Validate() error {
	for _, l := range Locales() {
		if strings.TrimSpace(t[l]) == "" {
			return fmt.Errorf("missing %q text", l)
		}
	}
	return nil
}

// Point is a single talking point or action item within a stage.
type Point struct {
	ID   string `yaml:"id"`
	Text Text   `yaml:"text"`
	// Checklist marks action items; it only changes how the point is drawn.
	Checklist bool `yaml:"checklist,omitempty"`
}

// Stage is one step of the call script.
type Stage struct {
	ID          string  `yaml:"id"`
	Title       Text    `yaml:"title"`
	Description Text    `yaml:"description,omitempty"`
	TimeLimit   string  `yaml:"time_limit"`
	Points      []Point `yaml:"points"`
}

// Target returns the stage's time target parsed from TimeLimit. The second
// result is false when TimeLimit carries no usable number, meaning no limit.
func (s Stage) Target() (time.Duration, bool) {
	return ParseTimeLimit(s.TimeLimit)
}

// Context renders the stage for the coaching prompt in the given locale.
func (s Stage) Context(l Locale) string {
	title := s.Title.Get(l)
	desc := s.Description.Get(l)
	if desc == "" {
		return title
	}
	return title + " — " + desc
}
