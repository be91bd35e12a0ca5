package fsaudit

import (
	"encoding/json"
	"io/fs"
	"strings"
)

// PermissionFlags is the set of "others" permission bits considered unusual.
type PermissionFlags uint8

// Individual permission flags. Only the "others" class is evaluated;
// owner and group bits are ignored.
const (
	WorldWritable PermissionFlags = 1 << iota
	WorldReadable
	WorldExecutable
)

// Mode bit masks for the "others" permission class.
const (
	otherWrite   = 0o002
	otherRead    = 0o004
	otherExecute = 0o001
)

// EvaluatePermissions returns the set of unusual permission flags for the
// given mode bits. It is a pure function and safe for concurrent use.
func EvaluatePermissions(mode fs.FileMode) PermissionFlags {
	var flags PermissionFlags

	if mode&otherWrite != 0 {
		flags |= WorldWritable
	}

	if mode&otherRead != 0 {
		flags |= WorldReadable
	}

	if mode&otherExecute != 0 {
		flags |= WorldExecutable
	}

	return flags
}

// Has reports whether all bits in flag are set.
func (f PermissionFlags) Has(flag PermissionFlags) bool {
	return f&flag == flag
}

// labels returns the display names of the set flags, most severe first.
func (f PermissionFlags) labels() []string {
	names := make([]string, 0, 3)

	if f.Has(WorldWritable) {
		names = append(names, "writable by others")
	}

	if f.Has(WorldReadable) {
		names = append(names, "readable by others")
	}

	if f.Has(WorldExecutable) {
		names = append(names, "executable by others")
	}

	return names
}

// String returns a comma-separated description of the set flags.
func (f PermissionFlags) String() string {
	return strings.Join(f.labels(), ", ")
}

// MarshalJSON renders the flag set as a JSON array of flag names.
func (f PermissionFlags) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.labels())
}
