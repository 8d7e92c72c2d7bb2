package i18n

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Locale
	}{
		{"", English},
		{"en", English},
		{"ar", Arabic},
		{"ar-AE", Arabic},
		{"ar-AE,en;q=0.8", Arabic},
		{"fr-FR,ar;q=0.5", Arabic},
		{"de", English},
		{"%%%", English},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestFromRequestPrefersQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/team?locale=en", nil)
	r.Header.Set("Accept-Language", "ar")
	require.Equal(t, English, FromRequest(r))

	r = httptest.NewRequest(http.MethodGet, "/api/team", nil)
	r.Header.Set("Accept-Language", "ar-SA")
	require.Equal(t, Arabic, FromRequest(r))
}

func TestTranslations(t *testing.T) {
	require.Equal(t, "Gold", T(English, TierNameKey("gold")))
	require.Equal(t, "الذهبية", T(Arabic, TierNameKey("gold")))
	require.Equal(t, "Hello Sara,", T(English, KeyGreeting, "Sara"))
	require.Equal(t, "rtl", Arabic.Dir())
	require.Equal(t, "ltr", English.Dir())

	for _, tier := range []string{"basic", "gold", "platinum", "diamond"} {
		for _, l := range []Locale{English, Arabic} {
			features := strings.Split(T(l, TierFeaturesKey(tier)), FeatureSeparator)
			require.GreaterOrEqual(t, len(features), 3, "%s/%s", tier, l)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	require.Equal(t, "AED 1,500.00", FormatAmount(English, 150000, "aed"))
	require.Equal(t, "AED 0.50", FormatAmount(English, 50, "aed"))
}
