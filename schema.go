package pkconv

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iov-one/pkconv/errors"
)

// Version is the schema version stamp carried by every project document.
//
// A version is encoded as major*100 + minor*10 + patch, so that 7.1.0 is
// stored as 710. Versions are totally ordered by their integer value.
type Version uint32

// Known project schema versions.
const (
	V7_0_0 Version = 700
	V7_1_0 Version = 710
	V7_2_0 Version = 720

	// Current is the schema version written by this build.
	Current = V7_2_0
)

// maxMajor is the largest major release that fits the encoding.
const maxMajor = (math.MaxUint32 - 99) / 100

// NewVersion returns a version for the given release triple. The triple must
// be in range, see ParseVersion.
func NewVersion(major, minor, patch uint32) Version {
	return Version(major*100 + minor*10 + patch)
}

// Major returns the major release number.
func (v Version) Major() uint32 { return uint32(v) / 100 }

// Minor returns the minor release number.
func (v Version) Minor() uint32 { return uint32(v) / 10 % 10 }

// Patch returns the patch release number.
func (v Version) Patch() uint32 { return uint32(v) % 10 }

// String returns the dotted release notation, for example 7.1.0.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

// Less returns true if v is an older schema than other.
func (v Version) Less(other Version) bool {
	return v < other
}

// Stamp returns the representation stored in a document, for example 710.
func (v Version) Stamp() string {
	return strconv.FormatUint(uint64(v), 10)
}

// ParseVersion reads a version either in the stored form (710) or in the
// dotted release notation (7.1.0).
func ParseVersion(raw string) (Version, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.Wrap(errors.ErrSchema, "empty version")
	}
	if !strings.Contains(raw, ".") {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return 0, errors.Wrapf(errors.ErrSchema, "malformed version %q", raw)
		}
		return Version(n), nil
	}

	chunks := strings.Split(raw, ".")
	if len(chunks) != 3 {
		return 0, errors.Wrapf(errors.ErrSchema, "malformed version %q", raw)
	}
	var nums [3]uint32
	for i, c := range chunks {
		n, err := strconv.ParseUint(c, 10, 32)
		if err != nil {
			return 0, errors.Wrapf(errors.ErrSchema, "malformed version %q", raw)
		}
		// Minor and patch are single digit by the encoding.
		if i > 0 && n > 9 {
			return 0, errors.Wrapf(errors.ErrSchema, "version %q component out of range", raw)
		}
		if i == 0 && n > maxMajor {
			return 0, errors.Wrapf(errors.ErrSchema, "version %q major out of range", raw)
		}
		nums[i] = uint32(n)
	}
	return NewVersion(nums[0], nums[1], nums[2]), nil
}
