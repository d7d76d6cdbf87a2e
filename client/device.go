// api/client/device.go
package client

import "regexp"

// DeviceSnapshot is the coarse device/browser/locale fingerprint attached
// to every event at flush time.
type DeviceSnapshot struct {
	UserAgent  string
	DeviceType string
	OS         string
	Browser    string
	ViewportW  int
	ViewportH  int
	ScreenW    int
	ScreenH    int
	TZ         string
	Language   string
	IsMobile   bool
}

// Environment exposes the ambient state a snapshot is read from. Embedders
// back it with whatever runtime they host the greeting in; tests use
// StaticEnvironment.
type Environment interface {
	UserAgent() string
	ViewportSize() (w, h int)
	ScreenSize() (w, h int)
	Timezone() string
	Language() string
	Path() string
	URL() string
	Referrer() string
}

// StaticEnvironment is a fixed-value Environment.
type StaticEnvironment struct {
	UA         string
	ViewportWH [2]int
	ScreenWH   [2]int
	TZ         string
	Lang       string
	PagePath   string
	PageURL    string
	Ref        string
}

func (e *StaticEnvironment) UserAgent() string         { return e.UA }
func (e *StaticEnvironment) ViewportSize() (int, int)  { return e.ViewportWH[0], e.ViewportWH[1] }
func (e *StaticEnvironment) ScreenSize() (int, int)    { return e.ScreenWH[0], e.ScreenWH[1] }
func (e *StaticEnvironment) Timezone() string          { return e.TZ }
func (e *StaticEnvironment) Language() string          { return e.Lang }
func (e *StaticEnvironment) Path() string              { return e.PagePath }
func (e *StaticEnvironment) URL() string               { return e.PageURL }
func (e *StaticEnvironment) Referrer() string          { return e.Ref }

var (
	tabletRegex  = regexp.MustCompile(`(?i)tablet|ipad`)
	mobileRegex  = regexp.MustCompile(`(?i)mobile|iphone|android`)
	androidRegex = regexp.MustCompile(`(?i)android`)
	iosRegex     = regexp.MustCompile(`(?i)iphone|ipad|ipod`)
	windowsRegex = regexp.MustCompile(`(?i)windows`)
	macRegex     = regexp.MustCompile(`(?i)macintosh|mac os x`)
	linuxRegex   = regexp.MustCompile(`(?i)linux`)
	edgeRegex    = regexp.MustCompile(`(?i)edg/`)
	operaRegex   = regexp.MustCompile(`(?i)opr/`)
	chromeRegex  = regexp.MustCompile(`(?i)chrome/`)
	safariRegex  = regexp.MustCompile(`(?i)safari/`)
	firefoxRegex = regexp.MustCompile(`(?i)firefox/`)
)

// ParseDeviceType classifies a user agent. Tablet patterns win over mobile
// ones so an iPad is never counted as both.
func ParseDeviceType(ua string) string {
	if tabletRegex.MatchString(ua) {
		return "tablet"
	}
	if mobileRegex.MatchString(ua) {
		return "mobile"
	}
	return "desktop"
}

func ParseOS(ua string) string {
	switch {
	case androidRegex.MatchString(ua):
		return "Android"
	case iosRegex.MatchString(ua):
		return "iOS"
	case windowsRegex.MatchString(ua):
		return "Windows"
	case macRegex.MatchString(ua):
		return "macOS"
	case linuxRegex.MatchString(ua):
		return "Linux"
	default:
		return "Unknown"
	}
}

// ParseBrowser tests the most specific tokens first; user agents routinely
// contain several overlapping ones (Chrome claims Safari, Edge claims both).
func ParseBrowser(ua string) string {
	switch {
	case edgeRegex.MatchString(ua):
		return "Edge"
	case operaRegex.MatchString(ua):
		return "Opera"
	case chromeRegex.MatchString(ua):
		return "Chrome"
	case safariRegex.MatchString(ua) && !chromeRegex.MatchString(ua):
		return "Safari"
	case firefoxRegex.MatchString(ua):
		return "Firefox"
	default:
		return "Unknown"
	}
}

// ReadSnapshot derives a snapshot from env. Every field has a fallback so
// this never fails.
func ReadSnapshot(env Environment) DeviceSnapshot {
	ua := env.UserAgent()
	deviceType := ParseDeviceType(ua)

	vw, vh := env.ViewportSize()
	sw, sh := env.ScreenSize()

	tz := env.Timezone()
	if tz == "" {
		tz = "unknown"
	}
	lang := env.Language()
	if lang == "" {
		lang = "unknown"
	}

	return DeviceSnapshot{
		UserAgent:  ua,
		DeviceType: deviceType,
		OS:         ParseOS(ua),
		Browser:    ParseBrowser(ua),
		ViewportW:  vw,
		ViewportH:  vh,
		ScreenW:    sw,
		ScreenH:    sh,
		TZ:         tz,
		Language:   lang,
		IsMobile:   deviceType != "desktop",
	}
}
