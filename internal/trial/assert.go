package trial

import (
	"github.com/rmarsh/ziptrial/internal/archive"
)

// assertPolicy checks the tie-break rule for forced policies: Always
// must yield an artifact reporting extension-used, Never must not.
// AsNecessary is engine-internal threshold behaviour and is not
// independently asserted.
func assertPolicy(trial string, arc archive.Archive, mode archive.Mode) error {
	switch mode {
	case archive.ModeAlways:
		if !arc.ExtensionUsed() {
			return &AssertionError{
				Trial:    trial,
				Subject:  "size-extension flag",
				Expected: "extended variant (mode always)",
				Actual:   "standard variant",
			}
		}
	case archive.ModeNever:
		if arc.ExtensionUsed() {
			return &AssertionError{
				Trial:    trial,
				Subject:  "size-extension flag",
				Expected: "standard variant (mode never)",
				Actual:   "extended variant",
			}
		}
	}
	return nil
}
