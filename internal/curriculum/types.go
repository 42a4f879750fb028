package curriculum

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/learngrid/internal/node"
	"github.com/specialistvlad/learngrid/internal/nodeid"
	"github.com/specialistvlad/learngrid/internal/workflow"
)

// fileRoot is a struct used to decode all top-level blocks from any file.
// There is no remain field: unknown blocks and attributes are errors.
type fileRoot struct {
	Lectures      []*nodeBlock         `hcl:"lecture,block"`
	Entities      []*nodeBlock         `hcl:"entity,block"`
	Prerequisites []*prerequisiteBlock `hcl:"prerequisite,block"`
	Learners      []*learnerBlock      `hcl:"learner,block"`
}

type nodeBlock struct {
	Name      string    `hcl:"name,label"`
	Label     *string   `hcl:"label,optional"`
	Category  *string   `hcl:"category,optional"`
	Order     *int      `hcl:"order,optional"`
	DeclRange hcl.Range `hcl:",def_range"`
}

type prerequisiteBlock struct {
	Dependent  hcl.Expression `hcl:"dependent"`
	Requires   hcl.Expression `hcl:"requires"`
	Required   *bool          `hcl:"required,optional"`
	Importance *int           `hcl:"importance,optional"`
	DeclRange  hcl.Range      `hcl:",def_range"`
}

type learnerBlock struct {
	ID        string            `hcl:"id,label"`
	Progress  map[string]string `hcl:"progress,optional"`
	DeclRange hcl.Range         `hcl:",def_range"`
}

// Curriculum is the format-agnostic result of loading one or more files.
type Curriculum struct {
	// Nodes are listed in canonical order (category, order, id).
	Nodes []node.Node
	// Prerequisites are listed in file order, files sorted by path.
	Prerequisites []Prerequisite
	Learners      []Learner
}

// Prerequisite is a declared "Dependent requires Prerequisite" relation.
type Prerequisite struct {
	Dependent    nodeid.Address
	Prerequisite nodeid.Address
	Required     bool
	Importance   int
	// Source is the file position of the declaring block, for error messages.
	Source string
}

// Learner is a learner with imported progress.
type Learner struct {
	ID       string
	Progress map[nodeid.Address]workflow.State
}
