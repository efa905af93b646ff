package client

import (
	"fmt"
	"io"
	"sync"
)

// View is the three-region display the controller drives: a loading
// indicator, a result panel and an error panel.
type View interface {
	ShowLoading()
	HideLoading()
	ShowResult(text string)
	HideResult()
	ShowError(msg string)
	HideError()
}

// TerminalView prints state changes to a writer. Only visible content is
// written; hide calls are silent.
type TerminalView struct {
	Out     io.Writer
	Err     io.Writer
	Verbose bool // also print the loading indicator
}

func (v *TerminalView) ShowLoading() {
	if v.Verbose {
		fmt.Fprintln(v.Err, "Searching...")
	}
}

func (v *TerminalView) HideLoading()           {}
func (v *TerminalView) ShowResult(text string) { fmt.Fprintln(v.Out, text) }
func (v *TerminalView) HideResult()            {}
func (v *TerminalView) ShowError(msg string)   { fmt.Fprintln(v.Err, "Error: "+msg) }
func (v *TerminalView) HideError()             {}

// RecordingView keeps the current state of each region plus the call log.
type RecordingView struct {
	mu sync.Mutex

	Loading      bool
	ResultShown  bool
	ResultText   string
	ErrorShown   bool
	ErrorMessage string
	Events       []string
}

func (v *RecordingView) record(ev string, fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn()
	v.Events = append(v.Events, ev)
}

func (v *RecordingView) ShowLoading() { v.record("ShowLoading", func() { v.Loading = true }) }
func (v *RecordingView) HideLoading() { v.record("HideLoading", func() { v.Loading = false }) }
func (v *RecordingView) ShowResult(text string) {
	v.record("ShowResult", func() { v.ResultShown, v.ResultText = true, text })
}
func (v *RecordingView) HideResult() { v.record("HideResult", func() { v.ResultShown = false }) }
func (v *RecordingView) ShowError(msg string) {
	v.record("ShowError", func() { v.ErrorShown, v.ErrorMessage = true, msg })
}
func (v *RecordingView) HideError() { v.record("HideError", func() { v.ErrorShown = false }) }
