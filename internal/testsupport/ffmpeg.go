package testsupport

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
)

const ffmpegHelperEnv = "SB3SLIM_WANT_FFMPEG_HELPER"

// FFmpegBehavior scripts the fake ffmpeg process.
type FFmpegBehavior struct {
	// Duration is printed as "Duration: <value>" during probes; empty omits it.
	Duration    string
	FailVersion bool
	FailProbe   bool
	FailEncode  bool
	// LogPath, when set, receives one line of arguments per invocation.
	LogPath string
}

// FakeFFmpeg returns a command factory that re-executes the current test
// binary as a scripted ffmpeg. The calling package must define
//
//	func TestHelperProcess(t *testing.T) { testsupport.FFmpegHelperMain() }
func FakeFFmpeg(b FFmpegBehavior) func(ctx context.Context, name string, args ...string) *exec.Cmd {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmdArgs := append([]string{"-test.run=^TestHelperProcess$", "--"}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cmdArgs...) //nolint:gosec
		cmd.Env = append(os.Environ(),
			ffmpegHelperEnv+"=1",
			"FAKE_FFMPEG_DURATION="+b.Duration,
			"FAKE_FFMPEG_LOG="+b.LogPath,
			fmt.Sprintf("FAKE_FFMPEG_FAIL_VERSION=%t", b.FailVersion),
			fmt.Sprintf("FAKE_FFMPEG_FAIL_PROBE=%t", b.FailProbe),
			fmt.Sprintf("FAKE_FFMPEG_FAIL_ENCODE=%t", b.FailEncode),
		)
		return cmd
	}
}

// FFmpegHelperMain emulates ffmpeg when running as a helper process and
// returns immediately otherwise.
func FFmpegHelperMain() {
	if os.Getenv(ffmpegHelperEnv) != "1" {
		return
	}
	args := os.Args
	if idx := slices.Index(args, "--"); idx >= 0 {
		args = args[idx+1:]
	}
	if logPath := os.Getenv("FAKE_FFMPEG_LOG"); logPath != "" {
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			fmt.Fprintln(f, strings.Join(args, " "))
			_ = f.Close()
		}
	}
	os.Exit(runFakeFFmpeg(args))
}

func runFakeFFmpeg(args []string) int {
	switch {
	case slices.Contains(args, "-version"):
		if os.Getenv("FAKE_FFMPEG_FAIL_VERSION") == "true" {
			fmt.Fprintln(os.Stderr, "ffmpeg: cannot execute")
			return 1
		}
		fmt.Println("ffmpeg version 6.1.1-fake Copyright (c) 2000-2023 the FFmpeg developers")
		return 0
	case isProbe(args):
		input := argAfter(args, "-i")
		fmt.Fprintf(os.Stderr, "Input #0, wav, from '%s':\n", input)
		if d := os.Getenv("FAKE_FFMPEG_DURATION"); d != "" {
			fmt.Fprintf(os.Stderr, "  Duration: %s, bitrate: 1411 kb/s\n", d)
		}
		if os.Getenv("FAKE_FFMPEG_FAIL_PROBE") == "true" {
			fmt.Fprintf(os.Stderr, "%s: Invalid data found when processing input\n", input)
			return 1
		}
		return 0
	default:
		if os.Getenv("FAKE_FFMPEG_FAIL_ENCODE") == "true" {
			fmt.Fprintln(os.Stderr, "Error while encoding stream #0:0")
			return 1
		}
		input := argAfter(args, "-i")
		data, err := os.ReadFile(input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: No such file or directory\n", input)
			return 1
		}
		prefix := "RIFF-fake-wav:"
		if slices.Contains(args, "libmp3lame") {
			prefix = "ID3-fake-mp3:"
		}
		output := args[len(args)-1]
		if err := os.WriteFile(output, append([]byte(prefix), data...), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
}

func isProbe(args []string) bool {
	idx := slices.Index(args, "-f")
	return idx >= 0 && idx+1 < len(args) && args[idx+1] == "null"
}

func argAfter(args []string, flag string) string {
	idx := slices.Index(args, flag)
	if idx < 0 || idx+1 >= len(args) {
		return ""
	}
	return args[idx+1]
}
