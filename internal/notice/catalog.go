package notice

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var supported = []language.Tag{language.English, language.Indonesian}

// Catalog renders notices in English or Indonesian.
type Catalog struct {
	matcher language.Matcher
	cat     *catalog.Builder
}

// NewCatalog builds the message catalog for every Kind.
func NewCatalog() *Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	set := func(tag language.Tag, key Kind, msg string) {
		// keys and messages are static; SetString only fails on malformed input
		if err := b.SetString(tag, string(key), msg); err != nil {
			panic(err)
		}
	}

	set(language.English, KindQuotaExceeded, "You've reached your free limit for %s. Upgrade to premium for unlimited access.")
	set(language.English, KindUnauthenticated, "Please log in to continue.")
	set(language.English, KindTransient, "We couldn't record your usage. Please try again.")
	set(language.English, KindUnknownFeature, "This feature is not available.")

	set(language.Indonesian, KindQuotaExceeded, "Kuota gratis untuk %s sudah habis. Tingkatkan ke premium untuk akses tanpa batas.")
	set(language.Indonesian, KindUnauthenticated, "Silakan masuk untuk melanjutkan.")
	set(language.Indonesian, KindTransient, "Penggunaan tidak dapat dicatat. Silakan coba lagi.")
	set(language.Indonesian, KindUnknownFeature, "Fitur ini tidak tersedia.")

	return &Catalog{matcher: language.NewMatcher(supported), cat: b}
}

// Message renders n for the given locale (BCP 47 or Accept-Language style).
func (c *Catalog) Message(locale string, n Notice) string {
	p := message.NewPrinter(c.match(locale), message.Catalog(c.cat))
	if n.Kind == KindQuotaExceeded {
		return p.Sprintf(string(n.Kind), string(n.Feature))
	}
	return p.Sprintf(string(n.Kind))
}

func (c *Catalog) match(locale string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, _ := c.matcher.Match(tags...)
	return supported[idx]
}
