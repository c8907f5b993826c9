package conversion

import (
	"github.com/iov-one/pkconv"
	"github.com/iov-one/pkconv/migration"
)

// Organ attribute names.
const (
	AttributeOrgan     = "organ"
	AttributeOrganType = "organType"
)

// step700To710 renames the organ attribute. Nothing changes in the decoded
// model.
func step700To710() migration.Step {
	return migration.Step{
		Name:       "7.0.0 -> 7.1.0 organ type attribute",
		From:       pkconv.V7_0_0,
		To:         pkconv.V7_1_0,
		Structural: migration.RenameAttribute(AttributeOrgan, AttributeOrganType),
	}
}
