package pkconv

import "fmt"

// Maj is the major version number (updated on breaking release)
const Maj = 0

// Min is the minor version number (updated on minor releases)
const Min = 3

// Fix is the patch number (updated on bugfix releases)
const Fix = 0

// Suffix used when not a tagged release (eg. -dev, -alpha, -beta, etc)
const Suffix = "-dev"

// buildVersion is private to avoid modifications
var buildVersion = fmt.Sprintf("v%d.%d.%d%s", Maj, Min, Fix, Suffix)

// GitCommit set by build flags
var GitCommit = ""

// BuildVersion is the string to be displayed by the command line tool. It
// describes the converter build, not the schema version of a project
// document. See Version for the latter.
func BuildVersion() string {
	v := buildVersion
	if GitCommit != "" {
		v += " " + GitCommit
	}
	return v
}
