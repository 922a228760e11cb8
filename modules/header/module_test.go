package header_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbuild/internal/testutil"
	"github.com/vk/gridbuild/modules/header"
)

func TestPrepend(t *testing.T) {
	t.Parallel()
	scope := testutil.NewScope(t, map[string]string{
		"css/main.css": "body{}",
		"index.html":   "<html>",
	})
	banner := "/*! HTML5 Boilerplate v5.3.0 | MIT License | https://html5boilerplate.com/ */\n\n"

	require.NoError(t, header.Prepend(context.Background(), scope, &header.Input{Text: banner, Include: []string{"**/*.css"}}))

	assert.Equal(t, map[string]string{
		"css/main.css": banner + "body{}",
		"index.html":   "<html>",
	}, testutil.Contents(scope.Stream))
}
