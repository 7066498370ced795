package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	chromeMac    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	chromeMacNew = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
	safariPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	firefoxLinux = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
	googlebot    = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		contains  []string
	}{
		{"chrome on desktop", chromeMac, []string{"Chrome", " on "}},
		{"safari on iphone", safariPhone, []string{"iPhone", " on "}},
		{"firefox on linux", firefoxLinux, []string{"Firefox", " on "}},
		{"unknown agent still formatted", "Unknown/1.0", []string{" on "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label := Label(tt.userAgent)
			for _, c := range tt.contains {
				assert.Contains(t, label, c)
			}
			assert.NotContains(t, label, "  ")
		})
	}

	t.Run("empty agent", func(t *testing.T) {
		assert.Equal(t, "Unknown Device", Label(""))
		assert.Equal(t, "Unknown Device", Label("   "))
	})
}

func TestFingerprint(t *testing.T) {
	assert.Empty(t, Fingerprint(""))
	assert.Len(t, Fingerprint(chromeMac), 16)
	assert.Equal(t, Fingerprint(chromeMac), Fingerprint(chromeMac))
	assert.NotEqual(t, Fingerprint(chromeMac), Fingerprint(firefoxLinux))
	assert.NotEqual(t, Fingerprint(chromeMac), Fingerprint(chromeMacNew), "major version is part of the fingerprint")
}

func TestBot(t *testing.T) {
	assert.True(t, Bot(googlebot))
	assert.False(t, Bot(chromeMac))
	assert.False(t, Bot(""))
}
