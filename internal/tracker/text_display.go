package tracker

import (
	"fmt"
	"io"
	"sync"
)

// TextDisplay prints a line to w whenever a field's visible text changes.
// Hidden fields are not printed.
type TextDisplay struct {
	mu      sync.Mutex
	w       io.Writer
	text    map[Field]string
	hidden  map[Field]bool
	ignored map[Field]bool
}

func NewTextDisplay(w io.Writer, ignore ...Field) *TextDisplay {
	d := &TextDisplay{
		w:       w,
		text:    make(map[Field]string),
		hidden:  make(map[Field]bool),
		ignored: make(map[Field]bool),
	}
	for _, f := range ignore {
		d.ignored[f] = true
	}
	return d
}

func (d *TextDisplay) SetText(f Field, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ignored[f] || d.text[f] == text {
		return
	}
	d.text[f] = text
	if !d.hidden[f] {
		fmt.Fprintf(d.w, "%-17s %s\n", f+":", text)
	}
}

// SetClass is a no-op; the text already carries the state.
func (d *TextDisplay) SetClass(Field, string) {}

func (d *TextDisplay) SetVisible(f Field, visible bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ignored[f] || d.hidden[f] == !visible {
		return
	}
	d.hidden[f] = !visible
	if visible && d.text[f] != "" {
		fmt.Fprintf(d.w, "%-17s %s\n", f+":", d.text[f])
	}
}

// Text returns the last text set for f.
func (d *TextDisplay) Text(f Field) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text[f]
}
