package ffmpeg

import (
	"regexp"
	"strconv"
)

var durationPattern = regexp.MustCompile(`Duration: (\d+):(\d+):([\d.]+)`)

// ParseDuration extracts the first "Duration: H:MM:SS.ss" stanza from ffmpeg
// diagnostic text and returns it in seconds.
func ParseDuration(text string) (float64, bool) {
	match := durationPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	hours, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.ParseFloat(match[2], 64)
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(match[3], 64)
	if err != nil {
		return 0, false
	}
	return hours*3600 + minutes*60 + seconds, true
}
