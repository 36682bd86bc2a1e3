package sketch

import (
	"strings"

	"github.com/devista-consulting/arduino-sketch-vault/internal/fqbn"
)

// PlatformString renders the platform entry for a profile:
// "vendor:arch (version)" when a version can be resolved, bare "vendor:arch"
// otherwise. The version is taken from the platform install path when
// possible, because that reflects what is actually on disk; the generic
// version property can be stale and is only a fallback.
func PlatformString(boardFQBN string, props map[string]string) string {
	platformID := fqbn.ExtractPlatformID(boardFQBN)
	version := platformVersion(platformID, props)
	if version == "" {
		return platformID
	}
	return platformID + " (" + version + ")"
}

// platformVersion extracts the installed platform version. Preference
// order: the path segment after /{vendor}/hardware/{arch}/ in the runtime
// install path, then the generic "version" property, then nothing.
func platformVersion(platformID string, props map[string]string) string {
	vendor, arch, ok := strings.Cut(platformID, ":")
	if ok {
		marker := "/" + vendor + "/hardware/" + arch + "/"
		if path := props["runtime.platform.path"]; path != "" {
			if idx := strings.Index(path, marker); idx >= 0 {
				rest := path[idx+len(marker):]
				if end := strings.IndexByte(rest, '/'); end >= 0 {
					rest = rest[:end]
				}
				if rest != "" {
					return rest
				}
			}
		}
	}
	return props["version"]
}
