package curriculum

import (
	"context"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/learngrid/internal/apperr"
	"github.com/specialistvlad/learngrid/internal/ctxlog"
	"github.com/specialistvlad/learngrid/internal/node"
	"github.com/specialistvlad/learngrid/internal/nodeid"
	"github.com/specialistvlad/learngrid/internal/workflow"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Load parses every curriculum file found under paths and returns the merged
// result. Paths may be files or directories.
func Load(ctx context.Context, paths ...string) (*Curriculum, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Curriculum loader started.", "path_count", len(paths))

	files, err := findFiles(paths)
	if err != nil {
		return nil, apperr.Validationf("%v", err)
	}
	if len(files) == 0 {
		return nil, apperr.Validationf("no %s files found in %s", Extension, strings.Join(paths, ", "))
	}
	logger.Debug("Discovered curriculum files.", "count", len(files))

	parser := hclparse.NewParser()
	var roots []*fileRoot
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, apperr.Validationf("failed to parse curriculum file %s: %s", file, diags.Error())
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, apperr.Validationf("failed to decode curriculum file %s: %s", file, diags.Error())
		}
		roots = append(roots, &root)
	}

	b := newBuilder()
	for _, root := range roots {
		for _, blk := range root.Lectures {
			if err := b.addNode(nodeid.KindLecture, blk); err != nil {
				return nil, err
			}
		}
		for _, blk := range root.Entities {
			if err := b.addNode(nodeid.KindEntity, blk); err != nil {
				return nil, err
			}
		}
	}

	evalCtx := b.evalContext()
	for _, root := range roots {
		for _, blk := range root.Prerequisites {
			if err := b.addPrerequisite(evalCtx, blk); err != nil {
				return nil, err
			}
		}
		for _, blk := range root.Learners {
			if err := b.addLearner(blk); err != nil {
				return nil, err
			}
		}
	}

	c := b.result()
	logger.Debug("Curriculum loading complete.",
		"nodes", len(c.Nodes), "prerequisites", len(c.Prerequisites), "learners", len(c.Learners))
	return c, nil
}

// builder accumulates translated blocks across files.
type builder struct {
	nodes     map[nodeid.Address]node.Node
	sources   map[nodeid.Address]hcl.Range
	prereqs   []Prerequisite
	learners  []Learner
	learnerAt map[string]hcl.Range
}

func newBuilder() *builder {
	return &builder{
		nodes:     make(map[nodeid.Address]node.Node),
		sources:   make(map[nodeid.Address]hcl.Range),
		learnerAt: make(map[string]hcl.Range),
	}
}

func (b *builder) addNode(kind nodeid.Kind, blk *nodeBlock) error {
	id, err := nodeid.Parse(string(kind) + "." + blk.Name)
	if err != nil {
		return apperr.Validationf("%s: %v", blk.DeclRange, err)
	}
	if prev, dup := b.sources[id]; dup {
		return apperr.Validationf("%s: duplicate %s %q, first declared at %s", blk.DeclRange, kind, blk.Name, prev)
	}

	n := node.Node{ID: id, Label: blk.Name}
	if blk.Label != nil {
		n.Label = *blk.Label
	}
	if blk.Category != nil {
		n.Category = *blk.Category
	}
	if blk.Order != nil {
		n.Order = *blk.Order
	}
	b.nodes[id] = n
	b.sources[id] = blk.DeclRange
	return nil
}

// evalContext exposes every declared node as lecture.<name> or entity.<name>,
// each evaluating to the node's canonical id string.
func (b *builder) evalContext() *hcl.EvalContext {
	byKind := map[nodeid.Kind]map[string]cty.Value{
		nodeid.KindLecture: {},
		nodeid.KindEntity:  {},
	}
	for id := range b.nodes {
		byKind[id.Kind][id.Name] = cty.StringVal(id.String())
	}

	vars := make(map[string]cty.Value, len(byKind))
	for kind, refs := range byKind {
		vars[string(kind)] = cty.ObjectVal(refs)
	}
	return &hcl.EvalContext{Variables: vars}
}

func (b *builder) addPrerequisite(evalCtx *hcl.EvalContext, blk *prerequisiteBlock) error {
	dependent, err := b.reference(evalCtx, blk.Dependent, "dependent")
	if err != nil {
		return err
	}
	requires, err := b.reference(evalCtx, blk.Requires, "requires")
	if err != nil {
		return err
	}

	p := Prerequisite{
		Dependent:    dependent,
		Prerequisite: requires,
		Required:     true,
		Importance:   node.DefaultImportance,
		Source:       blk.DeclRange.String(),
	}
	if blk.Required != nil {
		p.Required = *blk.Required
	}
	if blk.Importance != nil {
		p.Importance = *blk.Importance
	}
	b.prereqs = append(b.prereqs, p)
	return nil
}

// reference evaluates a node reference. Both lecture.plato and the string
// "lecture.plato" are accepted; either must name a declared node.
func (b *builder) reference(evalCtx *hcl.EvalContext, expr hcl.Expression, attr string) (nodeid.Address, error) {
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nodeid.Address{}, apperr.Validationf("invalid %s reference: %s", attr, diags.Error())
	}
	var raw string
	if err := gocty.FromCtyValue(val, &raw); err != nil {
		return nodeid.Address{}, apperr.Validationf("%s: %s must reference a lecture or entity: %v", expr.Range(), attr, err)
	}
	id, err := nodeid.Parse(raw)
	if err != nil {
		return nodeid.Address{}, apperr.Validationf("%s: %v", expr.Range(), err)
	}
	if _, ok := b.nodes[id]; !ok {
		return nodeid.Address{}, apperr.Validationf("%s: %s references undeclared node %q", expr.Range(), attr, raw)
	}
	return id, nil
}

func (b *builder) addLearner(blk *learnerBlock) error {
	if blk.ID == "" {
		return apperr.Validationf("%s: learner id must not be empty", blk.DeclRange)
	}
	if prev, dup := b.learnerAt[blk.ID]; dup {
		return apperr.Validationf("%s: duplicate learner %q, first declared at %s", blk.DeclRange, blk.ID, prev)
	}

	l := Learner{ID: blk.ID, Progress: make(map[nodeid.Address]workflow.State, len(blk.Progress))}
	for rawID, rawState := range blk.Progress {
		id, err := nodeid.Parse(rawID)
		if err != nil {
			return apperr.Validationf("%s: learner %q: %v", blk.DeclRange, blk.ID, err)
		}
		if _, ok := b.nodes[id]; !ok {
			return apperr.Validationf("%s: learner %q has progress on undeclared node %q", blk.DeclRange, blk.ID, rawID)
		}
		state, err := workflow.Parse(rawState)
		if err != nil {
			return apperr.Validationf("%s: learner %q: %v", blk.DeclRange, blk.ID, err)
		}
		l.Progress[id] = state
	}
	b.learners = append(b.learners, l)
	b.learnerAt[blk.ID] = blk.DeclRange
	return nil
}

func (b *builder) result() *Curriculum {
	c := &Curriculum{
		Nodes:         make([]node.Node, 0, len(b.nodes)),
		Prerequisites: b.prereqs,
		Learners:      b.learners,
	}
	for _, n := range b.nodes {
		c.Nodes = append(c.Nodes, n)
	}
	slices.SortFunc(c.Nodes, node.Compare)
	return c
}
