// Package device derives a display label and a coarse fingerprint from the
// candidate's browser User-Agent.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown Device"

// Label returns "Browser on OS", or "Browser on Platform" for mobile agents.
func Label(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return unknownDevice
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()

	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}

	os := ua.OS()
	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(browser + " on " + os)
}

// Fingerprint hashes browser family, major version, OS and form factor. It
// lets reviewers spot a session that changed browsers midway; it is not an
// identity.
func Fingerprint(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return ""
	}
	ua := useragent.New(userAgent)
	browser, version := ua.Browser()

	major := "unknown"
	if v, _, _ := strings.Cut(version, "."); v != "" {
		major = v
	}
	formFactor := "desktop"
	if ua.Mobile() {
		formFactor = "mobile"
	}
	data := fmt.Sprintf("%s|%s|%s|%s",
		normalize(browser), major, normalize(ua.OS()), formFactor)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:8])
}

// Bot reports whether the agent identifies itself as an automated client.
func Bot(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	return useragent.New(userAgent).Bot()
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}
	return s
}
