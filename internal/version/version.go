package version

import (
	"runtime/debug"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Devel is reported for builds without a released module version.
const Devel = "(devel)"

func String() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Devel
	}
	return classify(info.Main.Version)
}

// classify returns v unchanged when it names a release or prerelease, and
// Devel for empty, dirty, or pseudo versions.
func classify(v string) string {
	if v == "" || v == Devel {
		return Devel
	}
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return Devel
	}
	if strings.Contains(parsed.Metadata(), "dirty") || isPseudo(parsed) {
		return Devel
	}
	return parsed.Original()
}

// isPseudo reports whether v is a Go pseudo-version such as
// v0.0.0-20240314150926-abcdef123456 or v1.2.4-0.20240314150926-abcdef123456.
func isPseudo(v *semver.Version) bool {
	parts := strings.Split(v.Prerelease(), "-")
	if len(parts) < 2 {
		return false
	}
	ts := parts[len(parts)-2]
	if i := strings.LastIndex(ts, "."); i >= 0 {
		ts = ts[i+1:]
	}
	hash := parts[len(parts)-1]
	return len(ts) == 14 && allDigits(ts) && len(hash) >= 12 && allHex(hash)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func allHex(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F') {
			continue
		}
		return false
	}
	return true
}
