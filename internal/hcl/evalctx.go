package hcl

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/gridbuild/internal/config"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// functions are the functions available to every expression of a build file.
var functions = map[string]function.Function{
	"upper":     stdlib.UpperFunc,
	"lower":     stdlib.LowerFunc,
	"format":    stdlib.FormatFunc,
	"join":      stdlib.JoinFunc,
	"replace":   stdlib.ReplaceFunc,
	"trimspace": stdlib.TrimSpaceFunc,
	"concat":    stdlib.ConcatFunc,
}

// stringObject converts a string map into a cty object so that a reference
// to a missing key fails with an "unsupported attribute" diagnostic.
func stringObject(m map[string]string) cty.Value {
	if len(m) == 0 {
		return cty.EmptyObjectVal
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make(map[string]cty.Value, len(m))
	for _, k := range keys {
		attrs[k] = cty.StringVal(m[k])
	}
	return cty.ObjectVal(attrs)
}

func projectValue(p config.Project) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		"name":     cty.StringVal(p.Name),
		"slug":     cty.StringVal(p.Slug),
		"version":  cty.StringVal(p.Version),
		"license":  cty.StringVal(p.License),
		"homepage": cty.StringVal(p.Homepage),
	})
}

func directoriesValue(root string, d config.Directories) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		"root":    cty.StringVal(root),
		"src":     cty.StringVal(d.Src),
		"dist":    cty.StringVal(d.Dist),
		"archive": cty.StringVal(d.Archive),
	})
}

// evalContext builds the context for the stage that has all of the given
// model parts available. Parts not yet loaded are simply absent.
func evalContext(env, vars map[string]string, project *config.Project, root string, dirs *config.Directories) *hcl.EvalContext {
	variables := map[string]cty.Value{
		"env": stringObject(env),
	}
	if vars != nil {
		variables["var"] = stringObject(vars)
	}
	if project != nil {
		variables["project"] = projectValue(*project)
	}
	if dirs != nil {
		variables["dir"] = directoriesValue(root, *dirs)
	}
	return &hcl.EvalContext{
		Variables: variables,
		Functions: functions,
	}
}

// ModelEvalContext returns the full evaluation context of a loaded model,
// as used for step bodies.
func ModelEvalContext(m *config.Model) *hcl.EvalContext {
	return evalContext(m.Env, m.Variables, &m.Project, m.Root, &m.Directories)
}
