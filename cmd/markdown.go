package cmd

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// wordWrap is the width markdown is wrapped at in the terminal.
const wordWrap = 120

// printMarkdown renders md for the terminal. The raw markdown is printed when
// it cannot be rendered.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(wordWrap))
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}
