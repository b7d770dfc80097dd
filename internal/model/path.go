// Package model defines the data structures shared by the corpus scanner,
// the plan builder and the drift detector.
package model

import (
	"path"
	"strings"
)

// Path represents a file system path.
type Path string

// RootDirectory is the relative path of a walk root.
const RootDirectory = "."

// JoinRel joins a relative directory and a child name using forward slashes.
// Relative paths inside a corpus are always slash separated so plans are
// portable between platforms.
func JoinRel(dir, name string) string {
	if dir == "" || dir == RootDirectory {
		return name
	}

	return path.Join(dir, name)
}

// BaseName returns the final segment of a slash separated relative path.
func BaseName(rel string) string {
	if rel == "" || rel == RootDirectory {
		return RootDirectory
	}

	return path.Base(strings.TrimSuffix(rel, "/"))
}

// ChildName is the name a child occupies in a directory listing.
// Directories carry a trailing slash so a file and a directory of the
// same name never collapse into one entry.
func ChildName(rel string, isDir bool) string {
	name := BaseName(rel)
	if isDir {
		return name + "/"
	}

	return name
}
