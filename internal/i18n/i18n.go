// Package i18n selects the customer's locale and holds the English and Arabic
// strings the service renders itself (emails, tier and role labels).
package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

type Locale string

const (
	English Locale = "en"
	Arabic  Locale = "ar"
)

var (
	supported = []language.Tag{language.English, language.Arabic}
	matcher   = language.NewMatcher(supported)
)

// Parse accepts a bare locale ("ar"), a regional tag ("ar-AE") or a full
// Accept-Language value. Anything unsupported falls back to English.
func Parse(s string) Locale {
	s = strings.TrimSpace(s)
	if s == "" {
		return English
	}

	tags, _, err := language.ParseAcceptLanguage(s)
	if err != nil || len(tags) == 0 {
		return English
	}

	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return English
	}

	return fromTag(supported[idx])
}

// FromRequest prefers an explicit ?locale= over the Accept-Language header.
func FromRequest(r *http.Request) Locale {
	if l := r.URL.Query().Get("locale"); l != "" {
		return Parse(l)
	}
	return Parse(r.Header.Get("Accept-Language"))
}

func (l Locale) Tag() language.Tag {
	if l == Arabic {
		return language.Arabic
	}
	return language.English
}

func (l Locale) Dir() string {
	if l == Arabic {
		return "rtl"
	}
	return "ltr"
}

func (l Locale) String() string {
	return string(l)
}

func Printer(l Locale) *message.Printer {
	return message.NewPrinter(l.Tag(), message.Catalog(catalogue))
}

// T looks up key in the catalogue for l and formats args into it.
func T(l Locale, key string, args ...interface{}) string {
	return Printer(l).Sprintf(key, args...)
}

// FormatAmount renders minor units, e.g. 150000 aed -> "AED 1,500.00".
func FormatAmount(l Locale, minor int64, currency string) string {
	return Printer(l).Sprintf("%s %v",
		strings.ToUpper(currency),
		number.Decimal(float64(minor)/100, number.Scale(2)),
	)
}

func fromTag(t language.Tag) Locale {
	if t == language.Arabic {
		return Arabic
	}
	return English
}
