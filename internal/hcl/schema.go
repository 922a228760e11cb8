package hcl

import (
	"github.com/hashicorp/hcl/v2"
)

// rootSchema lists the top-level constructs of a build file. Anything else
// at the top level is an error. Blocks are evaluated in stages, so the body
// is split with Content first and each block decoded later.
var rootSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "default"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "project"},
		{Type: "directories"},
		{Type: "variables"},
		{Type: "task", LabelNames: []string{"name"}},
	},
}

// projectBlock is the `project` block.
type projectBlock struct {
	Name     string `hcl:"name"`
	Version  string `hcl:"version"`
	License  string `hcl:"license,optional"`
	Homepage string `hcl:"homepage,optional"`
}

// directoriesBlock is the `directories` block.
type directoriesBlock struct {
	Src     string `hcl:"src"`
	Dist    string `hcl:"dist"`
	Archive string `hcl:"archive,optional"`
}

// taskBlock is the body of a `task` block.
type taskBlock struct {
	Description string       `hcl:"description,optional"`
	DependsOn   []string     `hcl:"depends_on,optional"`
	Sequence    [][]string   `hcl:"sequence,optional"`
	Steps       []*stepBlock `hcl:"step,block"`
}

// stepBlock is a `step` block. Its body is kept raw and decoded later into
// the input struct of the step kind.
type stepBlock struct {
	Kind      string    `hcl:"kind,label"`
	Body      hcl.Body  `hcl:",remain"`
	DeclRange hcl.Range `hcl:",def_range"`
}
