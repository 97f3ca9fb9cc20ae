package transcode

import (
	"path"
	"strings"
)

// Kind classifies an asset by how it is transcoded.
type Kind int

const (
	KindOpaque Kind = iota
	KindVector
	KindRaster
	KindAudio
)

func (k Kind) String() string {
	switch k {
	case KindVector:
		return "vector"
	case KindRaster:
		return "raster"
	case KindAudio:
		return "audio"
	default:
		return "opaque"
	}
}

// Extension returns the lowercased extension of an archive path without the dot.
func Extension(p string) string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(p)), ".")
}

// KindForPath infers the asset kind from the path extension, case-insensitively.
func KindForPath(p string) Kind {
	switch Extension(p) {
	case "svg":
		return KindVector
	case "png", "jpg", "jpeg":
		return KindRaster
	case "wav", "mp3":
		return KindAudio
	default:
		return KindOpaque
	}
}
