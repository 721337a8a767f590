package version

// AppVersion is the checkctl release version. Overridden at build time via
// -ldflags "-X checkctl/internal/version.AppVersion=...".
var AppVersion = "0.1.0"
