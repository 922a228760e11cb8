package clean_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbuild/internal/testutil"
	"github.com/vk/gridbuild/modules/clean"
)

func TestClean(t *testing.T) {
	t.Parallel()
	scope := testutil.NewScope(t, nil)
	testutil.WriteTree(t, scope.Model.Root, map[string]string{
		"dist/index.html": "x",
		"archive/old.zip": "z",
		"src/index.html":  "keep",
	})

	require.NoError(t, clean.Clean(context.Background(), scope, &clean.Input{Paths: []string{"dist", "archive", "never-existed"}}))

	assert.Equal(t, map[string]string{"src/index.html": "keep"}, testutil.ReadTree(t, scope.Model.Root))
}

func TestClean_Refuses(t *testing.T) {
	t.Parallel()
	scope := testutil.NewScope(t, nil)
	testutil.WriteTree(t, scope.Model.Root, map[string]string{"src/index.html": "keep"})

	for _, p := range []string{".", "", "..", "../other", "/"} {
		err := clean.Clean(context.Background(), scope, &clean.Input{Paths: []string{p}})
		assert.ErrorContains(t, err, "refusing to clean", "path %q", p)
	}
	assert.Equal(t, map[string]string{"src/index.html": "keep"}, testutil.ReadTree(t, scope.Model.Root))
}
