package site_build

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const indexHTML = `<!doctype html>
<html class="no-js" lang="">
    <head>
        <meta charset="utf-8">
        <title>Fixture</title>
        <link rel="stylesheet" href="css/normalize.css">
        <link rel="stylesheet" href="css/main.css?rev=@@hash">
    </head>
    <body>
        <p>Hello world! This is HTML5 Boilerplate.</p>
        <script src="js/vendor/jquery-{{JQUERY_VERSION}}.min.js"></script>
        <script src="js/{{ALL}}.min.js?rev=@@hash"></script>
        <script src="js/missing.js?rev=@@hash"></script>
    </body>
</html>
`

const mainCSS = `html {
    color: #222;
    font-size: 1em;
}

.box {
    display: flex;
    user-select: none;
}
`

// fixture returns a small H5BP-shaped project built by the repository's own
// build file.
func fixture(t *testing.T) map[string]string {
	t.Helper()
	buildFile, err := os.ReadFile(filepath.Join("..", "..", "..", "build.hcl"))
	require.NoError(t, err)

	return map[string]string{
		"build.hcl":   string(buildFile),
		"LICENSE.txt": "Copyright (c) HTML5 Boilerplate\n",

		"node_modules/apache-server-configs/dist/.htaccess": "# ErrorDocument 404 /404.html\n",
		"node_modules/jquery/dist/jquery.min.js":            "/*! jQuery */\nwindow.jQuery={};\n",
		"node_modules/normalize.css/normalize.css":          "/*! normalize.css */\nhtml {\n    line-height: 1.15;\n}\n",

		"src/index.html":                 indexHTML,
		"src/404.html":                   "<!doctype html>\n<html>\n  <body>\n    <h1>Page Not Found</h1>\n  </body>\n</html>\n",
		"src/robots.txt":                 "User-agent: *\n",
		"src/css/main.css":               mainCSS,
		"src/js/main.js":                 "var greeting = 'hello';\nconsole.log(greeting);\n",
		"src/js/plugins.js":              "(function () {\n    var method;\n    var noop = function () {};\n    noop(method);\n}());\n",
		"src/js/vendor/modernizr.min.js": "/*! modernizr */\nwindow.Modernizr={};\n",
		"src/less/.gitkeep":              "",
		"src/img/tile.png":               tilePNG(t),
	}
}

func tilePNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 0x80, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.String()
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
