// Package container reads and writes the zip archives that hold a project
// manifest and its assets.
package container
