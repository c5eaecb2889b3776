package headtrack

import (
	"fmt"

	"github.com/bft-labs/headtrack/pkg/hmd"
	"github.com/bft-labs/headtrack/pkg/log"
)

// Version information for the headtrack module.
const (
	Version              = "1.0.0"
	MinCompatibleVersion = "1.0.0"
)

// ModuleVersions returns the version of every sub-module the tracker uses.
func ModuleVersions() map[string]string {
	return map[string]string{
		"headtrack": Version,
		"hmd":       hmd.Version,
		"log":       log.Version,
	}
}

// validateModuleVersions checks that all module versions are compatible.
func validateModuleVersions() error {
	modules := map[string]struct {
		version    string
		minVersion string
	}{
		"hmd": {hmd.Version, hmd.MinCompatibleVersion},
		"log": {log.Version, log.MinCompatibleVersion},
	}

	for name, m := range modules {
		if !isVersionCompatible(m.version, m.minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, m.version, m.minVersion)
		}
	}
	return nil
}

// isVersionCompatible reports whether version >= minVersion. Both are
// "major.minor.patch".
func isVersionCompatible(version, minVersion string) bool {
	var vMajor, vMinor, vPatch int
	var mMajor, mMinor, mPatch int

	_, _ = fmt.Sscanf(version, "%d.%d.%d", &vMajor, &vMinor, &vPatch)
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &mMajor, &mMinor, &mPatch)

	if vMajor != mMajor {
		return vMajor > mMajor
	}
	if vMinor != mMinor {
		return vMinor > mMinor
	}
	return vPatch >= mPatch
}
