// Package fileutil provides file helpers shared by the CLI.
package fileutil
