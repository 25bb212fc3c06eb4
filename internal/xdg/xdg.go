// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xdg locates per-user configuration files and runtime
// directories.
package xdg

import (
	"os"
	"path/filepath"
	"syscall"
)

// Config returns the path to the named file found first in the user's
// configuration directory and then the system configuration directories.
// If no file is found Config returns ENOENT.
func Config(name string) (string, error) {
	if base, ok := ConfigHome(); ok {
		path := filepath.Join(base, name)
		if exists(path) {
			return path, nil
		}
	}
	list, ok := envOrDefault(keyConfigDirs, defConfigDirs, "")
	if !ok {
		return "", syscall.ENOENT
	}
	for _, base := range filepath.SplitList(list) {
		path := filepath.Join(base, name)
		if exists(path) {
			return path, nil
		}
	}
	return "", syscall.ENOENT
}

// ConfigHome returns the path corresponding to XDG_CONFIG_HOME.
func ConfigHome() (string, bool) {
	return envOrDefault(keyConfigHome, defConfigHome, keyHome)
}

// RuntimeDir returns the path corresponding to XDG_RUNTIME_DIR.
func RuntimeDir() (string, bool) {
	return envOrDefault(keyRuntimeDir, defRuntimeDir, keyHome)
}

// Runtime returns the named directory within RuntimeDir, creating it
// with mode 0o700 if it does not exist.
func Runtime(name string) (string, error) {
	base, ok := RuntimeDir()
	if !ok {
		return "", syscall.ENOENT
	}
	path := filepath.Join(base, name)
	err := os.MkdirAll(path, 0o700)
	if err != nil {
		return "", err
	}
	return path, nil
}

func exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

// envOrDefault return the path or path list corresponding to the provided
// key and default. If home is empty or the default is absolute, the default
// is returned unaltered, otherwise the default is returned relative to the
// value of the home environment variable.
func envOrDefault(key, def, home string) (string, bool) {
	if key != "" {
		val, ok := os.LookupEnv(key)
		if ok {
			return val, true
		}
	}
	if def == "" {
		return "", false
	}
	if home == "" || filepath.IsAbs(def) {
		return def, true
	}
	base, ok := os.LookupEnv(home)
	if !ok {
		return "", false
	}
	return filepath.Join(base, def), true
}
