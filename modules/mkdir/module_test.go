package mkdir_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbuild/internal/testutil"
	"github.com/vk/gridbuild/modules/mkdir"
)

func TestMkdir(t *testing.T) {
	t.Parallel()
	scope := testutil.NewScope(t, nil)

	require.NoError(t, mkdir.Mkdir(context.Background(), scope, &mkdir.Input{Path: "archive/nested"}))
	info, err := os.Stat(scope.Path("archive/nested"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	// Existing directories are fine and take the requested mode.
	require.NoError(t, mkdir.Mkdir(context.Background(), scope, &mkdir.Input{Path: "archive/nested", Mode: "0700"}))
	info, err = os.Stat(scope.Path("archive/nested"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestMkdir_Errors(t *testing.T) {
	t.Parallel()
	scope := testutil.NewScope(t, nil)
	testutil.WriteTree(t, scope.Model.Root, map[string]string{"file": "x"})

	assert.ErrorContains(t, mkdir.Mkdir(context.Background(), scope, &mkdir.Input{Path: "a", Mode: "x"}), "must be octal")
	assert.Error(t, mkdir.Mkdir(context.Background(), scope, &mkdir.Input{Path: "file/sub"}))
}
