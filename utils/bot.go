package utils

import (
	"regexp"
	"strings"
)

// Matches crawlers, uptime monitors and headless browsers that routinely hit
// the deployed site. Kept deliberately broad; bot rows are flagged, not dropped.
var botUARegex = regexp.MustCompile(`(bot|spider|crawler|headless|uptime|vercel|monitor|pingdom|checkly|datadog|facebookexternalhit|slurp|curl|wget)`)

// IsLikelyBot classifies a request as bot traffic from its user agent and
// the page path the event was recorded on. An empty user agent counts as a
// bot, as do platform-internal and API paths.
func IsLikelyBot(userAgent, path *string) bool {
	ua := ""
	if userAgent != nil {
		ua = strings.ToLower(*userAgent)
	}
	p := ""
	if path != nil {
		p = strings.ToLower(*path)
	}

	if ua == "" {
		return true
	}
	if strings.Contains(p, "/_vercel") || strings.Contains(p, "/api/") {
		return true
	}
	return botUARegex.MatchString(ua)
}
