// SPDX-License-Identifier: MPL-2.0

package platform

import "strings"

var windowsReservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// IsWindowsReservedName reports whether name is a device name Windows will not
// accept as a file or directory name. The check ignores case and any extension.
func IsWindowsReservedName(name string) bool {
	base, _, _ := strings.Cut(name, ".")
	_, reserved := windowsReservedNames[strings.ToUpper(base)]
	return reserved
}
