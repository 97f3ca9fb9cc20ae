package main

import (
	"fmt"
	"io"
	"math"

	"github.com/schollz/progressbar/v3"

	"sb3slim/internal/pipeline"
)

// progressView renders pipeline updates: a bar on terminals, otherwise one
// line per status change.
type progressView struct {
	out        io.Writer
	bar        *progressbar.ProgressBar
	lastStatus string
}

func newProgressView(out io.Writer, interactive bool) *progressView {
	v := &progressView{out: out}
	if interactive {
		v.bar = progressbar.NewOptions(100,
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowDescriptionAtLineEnd(),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionClearOnFinish(),
		)
	}
	return v
}

func (v *progressView) report(u pipeline.Update) {
	if v.bar == nil {
		if u.Status != v.lastStatus {
			fmt.Fprintln(v.out, u.Status)
		}
		v.lastStatus = u.Status
		return
	}
	desc := u.Status
	if u.Total > 0 && u.State == pipeline.StateOptimizing {
		desc = fmt.Sprintf("%s %d/%d", u.Status, u.Processed, u.Total)
	}
	v.bar.Describe(desc)
	_ = v.bar.Set(int(math.Round(u.Progress * 100)))
	v.lastStatus = u.Status
	if u.State.Terminal() {
		_ = v.bar.Finish()
		fmt.Fprintln(v.out, u.Status)
	}
}
