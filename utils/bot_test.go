package utils

import "testing"

func TestIsLikelyBot(t *testing.T) {
	sp := func(s string) *string { return &s }

	tests := []struct {
		name string
		ua   *string
		path *string
		want bool
	}{
		{"nil user agent", nil, sp("/"), true},
		{"empty user agent", sp(""), sp("/"), true},
		{"regular chrome", sp("Mozilla/5.0 (Macintosh) Chrome/126.0"), sp("/"), false},
		{"googlebot", sp("Mozilla/5.0 (compatible; Googlebot/2.1)"), sp("/"), true},
		{"uptime monitor", sp("UptimeRobot/2.0"), sp("/"), true},
		{"headless chrome", sp("Mozilla/5.0 HeadlessChrome/126.0"), sp("/"), true},
		{"curl", sp("curl/8.4.0"), sp("/"), true},
		{"mixed case crawler", sp("MySpecial-Crawler 1.0"), sp("/"), true},
		{"vercel internal path", sp("Mozilla/5.0 (Macintosh) Chrome/126.0"), sp("/_vercel/insights"), true},
		{"api path", sp("Mozilla/5.0 (Macintosh) Chrome/126.0"), sp("/api/analytics/events"), true},
		{"nil path", sp("Mozilla/5.0 (Macintosh) Chrome/126.0"), nil, false},
		{"iphone safari", sp("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Version/17.0 Mobile/15E148 Safari/604.1"), sp("/proposal"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsLikelyBot(tc.ua, tc.path); got != tc.want {
				t.Errorf("IsLikelyBot(%v, %v) = %v, want %v", tc.ua, tc.path, got, tc.want)
			}
		})
	}
}
