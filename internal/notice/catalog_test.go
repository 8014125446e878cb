package notice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketdesk/server/internal/domain"
)

func TestCatalogMessage(t *testing.T) {
	c := NewCatalog()
	quota := Notice{Kind: KindQuotaExceeded, Feature: domain.FeatureEmail}

	tests := []struct {
		name   string
		locale string
		n      Notice
		want   string
	}{
		{name: "english quota", locale: "en", n: quota, want: "You've reached your free limit for email."},
		{name: "indonesian quota", locale: "id", n: quota, want: "Kuota gratis untuk email sudah habis."},
		{name: "accept-language list", locale: "id-ID,en;q=0.8", n: quota, want: "Kuota gratis untuk email"},
		{name: "unsupported falls back", locale: "fr", n: quota, want: "You've reached your free limit"},
		{name: "garbage falls back", locale: "%%%", n: Notice{Kind: KindTransient}, want: "Please try again."},
		{name: "login", locale: "en", n: Notice{Kind: KindUnauthenticated}, want: "Please log in"},
		{name: "indonesian transient", locale: "id", n: Notice{Kind: KindTransient}, want: "Silakan coba lagi."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Message(tc.locale, tc.n)
			assert.True(t, strings.Contains(got, tc.want), "Message() = %q, want substring %q", got, tc.want)
		})
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	_, ok := r.Last()
	require.False(t, ok)

	r.Notify(Notice{Kind: KindTransient, Attempts: 4})
	r.Notify(Notice{Kind: KindQuotaExceeded})

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, KindQuotaExceeded, last.Kind)
	assert.Len(t, r.All(), 2)
}
