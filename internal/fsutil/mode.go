package fsutil

import (
	"fmt"
	"io/fs"
	"strconv"
)

// ParseMode parses an octal permission string such as "0755". An empty
// string yields def.
func ParseMode(s string, def fs.FileMode) (fs.FileMode, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid file mode %q: must be octal", s)
	}
	if v > 0o777 {
		return 0, fmt.Errorf("invalid file mode %q: only permission bits are allowed", s)
	}
	return fs.FileMode(v), nil
}
