package hcl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
	"github.com/vk/gridbuild/internal/config"
	"github.com/vk/gridbuild/internal/ctxlog"
	"github.com/vk/gridbuild/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// DotEnvFile is the name of the optional environment file read from the
// project root.
const DotEnvFile = ".env"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	// environ returns the process environment; replaced in tests.
	environ  func() []string
	validate *validator.Validate
}

// NewLoader creates a new HCL build file loader.
func NewLoader() *Loader {
	return &Loader{
		environ:  os.Environ,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// fileContent is the staged view of one parsed file.
type fileContent struct {
	path    string
	content *hcl.BodyContent
}

// Load orchestrates the entire HCL loading process. Blocks are evaluated in
// stages so that later blocks may reference earlier ones: variables see
// `env`; project sees `env` and `var`; directories additionally see
// `project`; tasks and steps see everything.
func (l *Loader) Load(ctx context.Context, overrides map[string]string, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindBuildFiles(paths...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no build files found in %s", strings.Join(paths, ", "))
	}
	logger.Debug("Discovered build files.", "count", len(files))

	root, err := projectRoot(paths[0])
	if err != nil {
		return nil, err
	}

	model := &config.Model{
		Root:      root,
		Variables: make(map[string]string),
		Tasks:     make(map[string]*config.Task),
	}

	model.Env, err = l.loadEnv(root)
	if err != nil {
		return nil, err
	}

	parser := hclparse.NewParser()
	var contents []fileContent
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse build file %s: %w", file, diags)
		}
		content, diags := hclFile.Body.Content(rootSchema)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode build file %s: %w", file, diags)
		}
		contents = append(contents, fileContent{path: file, content: content})
	}

	if err := l.loadVariables(model, contents, overrides); err != nil {
		return nil, err
	}
	if err := l.loadProject(model, contents); err != nil {
		return nil, err
	}
	if err := l.loadDirectories(model, contents); err != nil {
		return nil, err
	}
	if err := l.loadTasks(model, contents); err != nil {
		return nil, err
	}
	if err := l.loadDefault(model, contents); err != nil {
		return nil, err
	}

	logger.Debug("HCL loading complete.", "root", model.Root, "tasks", len(model.Tasks), "variables", len(model.Variables))
	return model, nil
}

func projectRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("error accessing path %s: %w", path, err)
	}
	if info.IsDir() {
		return abs, nil
	}
	return filepath.Dir(abs), nil
}

// loadEnv merges the process environment over the project's .env file.
func (l *Loader) loadEnv(root string) (map[string]string, error) {
	env, err := godotenv.Read(filepath.Join(root, DotEnvFile))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", DotEnvFile, err)
		}
		env = make(map[string]string)
	}
	for _, kv := range l.environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env, nil
}

// singleBlock returns the only block of the given type across all files.
func singleBlock(contents []fileContent, blockType string) (*hcl.Block, error) {
	var found *hcl.Block
	for _, fc := range contents {
		for _, block := range fc.content.Blocks.OfType(blockType) {
			if found != nil {
				return nil, fmt.Errorf("duplicate %s block at %s, first defined at %s", blockType, block.DefRange, found.DefRange)
			}
			found = block
		}
	}
	return found, nil
}

func (l *Loader) loadVariables(model *config.Model, contents []fileContent, overrides map[string]string) error {
	evalCtx := evalContext(model.Env, nil, nil, "", nil)
	for _, fc := range contents {
		for _, block := range fc.content.Blocks.OfType("variables") {
			attrs, diags := block.Body.JustAttributes()
			if diags.HasErrors() {
				return fmt.Errorf("invalid variables block in %s: %w", fc.path, diags)
			}
			for name, attr := range attrs {
				if _, exists := model.Variables[name]; exists {
					return fmt.Errorf("variable %q is declared more than once (%s)", name, attr.Range)
				}
				val, diags := attr.Expr.Value(evalCtx)
				if diags.HasErrors() {
					return fmt.Errorf("evaluating variable %q: %w", name, diags)
				}
				str, err := convert.Convert(val, cty.String)
				if err != nil || str.IsNull() {
					return fmt.Errorf("variable %q at %s must be a string, number or bool", name, attr.Range)
				}
				model.Variables[name] = str.AsString()
			}
		}
	}
	for name, value := range overrides {
		model.Variables[name] = value
	}
	return nil
}

func (l *Loader) loadProject(model *config.Model, contents []fileContent) error {
	block, err := singleBlock(contents, "project")
	if err != nil {
		return err
	}
	if block == nil {
		return errors.New("missing project block")
	}

	var pb projectBlock
	evalCtx := evalContext(model.Env, model.Variables, nil, "", nil)
	if diags := gohcl.DecodeBody(block.Body, evalCtx, &pb); diags.HasErrors() {
		return fmt.Errorf("invalid project block: %w", diags)
	}

	model.Project = config.Project{
		Name:     pb.Name,
		Slug:     slug.Make(pb.Name),
		Version:  pb.Version,
		License:  pb.License,
		Homepage: pb.Homepage,
	}
	if err := l.validate.Struct(model.Project); err != nil {
		return fmt.Errorf("invalid project block: %w", err)
	}
	if _, err := semver.NewVersion(pb.Version); err != nil {
		return fmt.Errorf("invalid project version %q at %s: %w", pb.Version, block.DefRange, err)
	}
	return nil
}

func (l *Loader) loadDirectories(model *config.Model, contents []fileContent) error {
	block, err := singleBlock(contents, "directories")
	if err != nil {
		return err
	}
	if block == nil {
		return errors.New("missing directories block")
	}

	var db directoriesBlock
	evalCtx := evalContext(model.Env, model.Variables, &model.Project, "", nil)
	if diags := gohcl.DecodeBody(block.Body, evalCtx, &db); diags.HasErrors() {
		return fmt.Errorf("invalid directories block: %w", diags)
	}
	model.Directories = config.Directories{Src: db.Src, Dist: db.Dist, Archive: db.Archive}
	if err := l.validate.Struct(model.Directories); err != nil {
		return fmt.Errorf("invalid directories block: %w", err)
	}

	for _, dir := range model.Directories.Outputs() {
		if model.Path(dir) == model.Root {
			return fmt.Errorf("output directory %q must not be the project root", dir)
		}
	}
	return nil
}

func (l *Loader) loadTasks(model *config.Model, contents []fileContent) error {
	evalCtx := ModelEvalContext(model)
	for _, fc := range contents {
		for _, block := range fc.content.Blocks.OfType("task") {
			name := block.Labels[0]
			if existing, ok := model.Tasks[name]; ok {
				return fmt.Errorf("task %q at %s is already defined at %s", name, block.DefRange, existing.DeclRange)
			}

			var tb taskBlock
			if diags := gohcl.DecodeBody(block.Body, evalCtx, &tb); diags.HasErrors() {
				return fmt.Errorf("invalid task %q: %w", name, diags)
			}
			model.Tasks[name] = translateTask(name, block.DefRange, &tb)
			model.Order = append(model.Order, name)
		}
	}
	return nil
}

func (l *Loader) loadDefault(model *config.Model, contents []fileContent) error {
	evalCtx := ModelEvalContext(model)
	for _, fc := range contents {
		attr, ok := fc.content.Attributes["default"]
		if !ok {
			continue
		}
		if model.Default != "" {
			return fmt.Errorf("default target is set more than once (%s)", attr.Range)
		}
		if diags := gohcl.DecodeExpression(attr.Expr, evalCtx, &model.Default); diags.HasErrors() {
			return fmt.Errorf("invalid default target: %w", diags)
		}
	}
	if model.Default == "" {
		model.Default = "build"
	}
	return nil
}
