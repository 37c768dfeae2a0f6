package stamp

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"golang.org/x/text/language"
)

const (
	DefaultLabelPrefix = "Dátum spracovania"
	DefaultLocale      = "sk-SK"

	// ISOLocale selects the ISO 8601 layout regardless of language. The
	// undetermined tag "und" does the same.
	ISOLocale = "iso"
)

// Numeric year, 2-digit month and 2-digit day, in the order and with the
// separators of each locale.
var (
	supportedLocales = []language.Tag{
		language.Slovak,
		language.Czech,
		language.German,
		language.Polish,
		language.AmericanEnglish,
		language.BritishEnglish,
		language.Hungarian,
	}
	localeLayouts = []string{
		"02.01.2006",
		"02.01.2006",
		"02.01.2006",
		"02.01.2006",
		"01/02/2006",
		"02/01/2006",
		"2006. 01. 02.",
	}
	localeMatcher = language.NewMatcher(supportedLocales)
)

const isoLayout = "2006-01-02"

// LabelFormatter renders the "processed on" label. The layout comes from a
// fixed table keyed by locale, never from the system locale.
type LabelFormatter struct {
	Prefix   string
	Locale   string
	Layout   string
	Location *time.Location
	Now      func() time.Time
}

// NewLabelFormatter resolves locale to a date layout. timezone is an IANA
// name; empty means the local zone of the process.
func NewLabelFormatter(prefix, locale, timezone string) (*LabelFormatter, error) {
	if prefix == "" {
		prefix = DefaultLabelPrefix
	}
	if locale == "" {
		locale = DefaultLocale
	}

	layout, err := layoutFor(locale)
	if err != nil {
		return nil, err
	}

	loc := time.Local
	if timezone != "" {
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("failed to load time zone %q: %w", timezone, err)
		}
	}

	return &LabelFormatter{
		Prefix:   prefix,
		Locale:   locale,
		Layout:   layout,
		Location: loc,
		Now:      time.Now,
	}, nil
}

// DefaultLabelFormatter returns the formatter for DefaultLabelPrefix and
// DefaultLocale in the local zone.
func DefaultLabelFormatter() *LabelFormatter {
	return &LabelFormatter{
		Prefix:   DefaultLabelPrefix,
		Locale:   DefaultLocale,
		Layout:   localeLayouts[0],
		Location: time.Local,
		Now:      time.Now,
	}
}

func layoutFor(locale string) (string, error) {
	if strings.EqualFold(locale, ISOLocale) {
		return isoLayout, nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrUnsupportedLocale, locale, err)
	}
	if tag == language.Und {
		return isoLayout, nil
	}
	_, idx, confidence := localeMatcher.Match(tag)
	if confidence == language.No {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLocale, locale)
	}
	return localeLayouts[idx], nil
}

// FormatDate formats t in the formatter's zone and layout.
func (f *LabelFormatter) FormatDate(t time.Time) string {
	if f.Location != nil {
		t = t.In(f.Location)
	}
	return t.Format(f.Layout)
}

// Format returns "<prefix>: <date>" for t.
func (f *LabelFormatter) Format(t time.Time) string {
	return f.Prefix + ": " + f.FormatDate(t)
}

// Label returns the label for the current time.
func (f *LabelFormatter) Label() string {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	return f.Format(now())
}
