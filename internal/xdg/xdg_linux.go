// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package xdg

// https://specifications.freedesktop.org/basedir-spec/basedir-spec-0.8.html
const (
	keyHome = "HOME"

	// $XDG_CONFIG_HOME or $HOME/.config
	keyConfigHome = "XDG_CONFIG_HOME"
	defConfigHome = ".config"

	// $XDG_CONFIG_DIRS or /etc/xdg
	keyConfigDirs = "XDG_CONFIG_DIRS"
	defConfigDirs = "/etc/xdg"

	// $XDG_RUNTIME_DIR
	// Fail rather than construct.
	keyRuntimeDir = "XDG_RUNTIME_DIR"
	defRuntimeDir = ""
)
