package copy_tree_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbuild/internal/testutil"
	"github.com/vk/gridbuild/modules/copy_tree"
)

func TestCopy_Tree(t *testing.T) {
	t.Parallel()
	scope := testutil.NewScope(t, nil)
	m := scope.Model
	testutil.WriteTree(t, m.Path("src"), map[string]string{
		"index.html":     "<html>",
		".htaccess":      "Options",
		"img/logo.png":   "png",
		"less/site.less": "@a:1;",
		"js/main.js":     "x()",
	})
	require.NoError(t, os.Chmod(m.Path("src/js/main.js"), 0o755))

	input := &copy_tree.Input{From: "src", To: "dist", Exclude: []string{"less", "less/**", "index.html"}}
	require.NoError(t, copy_tree.Copy(context.Background(), scope, input))

	assert.Equal(t, map[string]string{
		".htaccess":    "Options",
		"img/logo.png": "png",
		"js/main.js":   "x()",
	}, testutil.ReadTree(t, m.Path("dist")))

	info, err := os.Stat(m.Path("dist/js/main.js"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestCopy_SingleFile(t *testing.T) {
	t.Parallel()
	scope := testutil.NewScope(t, nil)
	testutil.WriteTree(t, scope.Model.Root, map[string]string{"LICENSE.txt": "MIT"})

	require.NoError(t, copy_tree.Copy(context.Background(), scope, &copy_tree.Input{From: "LICENSE.txt", To: "dist/LICENSE.txt"}))
	assert.Equal(t, map[string]string{"LICENSE.txt": "MIT"}, testutil.ReadTree(t, scope.Path("dist")))
}

func TestCopy_Checks(t *testing.T) {
	t.Parallel()
	scope := testutil.NewScope(t, nil)
	m := scope.Model

	assert.ErrorContains(t, copy_tree.Copy(context.Background(), scope, &copy_tree.Input{From: "dist", To: "dist/sub"}), "overlap")
	assert.ErrorContains(t, (&copy_tree.Input{From: "vendor/jquery.js", To: "dist/js"}).Preflight(m), "copy source vendor/jquery.js")
	assert.NoError(t, (&copy_tree.Input{From: "dist/css", To: "archive/css"}).Preflight(m))

	in := &copy_tree.Input{From: "a", To: "b"}
	assert.Equal(t, []string{m.Path("a")}, in.Reads(m))
	assert.Equal(t, []string{m.Path("b")}, in.Writes(m))
}
