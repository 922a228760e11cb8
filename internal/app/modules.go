package app

import (
	"github.com/vk/gridbuild/internal/registry"
	"github.com/vk/gridbuild/modules/autoprefix"
	"github.com/vk/gridbuild/modules/clean"
	"github.com/vk/gridbuild/modules/concat"
	"github.com/vk/gridbuild/modules/copy_tree"
	"github.com/vk/gridbuild/modules/dest"
	"github.com/vk/gridbuild/modules/exec_cmd"
	"github.com/vk/gridbuild/modules/header"
	"github.com/vk/gridbuild/modules/imagemin"
	"github.com/vk/gridbuild/modules/minify"
	"github.com/vk/gridbuild/modules/mkdir"
	"github.com/vk/gridbuild/modules/rename"
	"github.com/vk/gridbuild/modules/replace"
	"github.com/vk/gridbuild/modules/rev"
	"github.com/vk/gridbuild/modules/src"
	"github.com/vk/gridbuild/modules/zip"
)

// CoreModules is the definitive list of all step modules that are compiled
// into the gridbuild binary.
var CoreModules = []registry.Module{
	&src.Module{},
	&dest.Module{},
	&replace.Module{},
	&header.Module{},
	&rename.Module{},
	&concat.Module{},
	&autoprefix.Module{},
	&minify.Module{},
	&imagemin.Module{},
	&rev.Module{},
	&exec_cmd.Module{},
	&copy_tree.Module{},
	&clean.Module{},
	&mkdir.Module{},
	&zip.Module{},
}
