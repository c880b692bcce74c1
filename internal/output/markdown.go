package output

import (
	"github.com/charmbracelet/glamour"
)

const markdownWidth = 80

// markdownStyle is a glamour standard style name; DisableColor switches it to notty.
var markdownStyle = "dark"

// RenderMarkdown renders a goal description for the terminal. If rendering
// fails the source text is returned unchanged.
func RenderMarkdown(src string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(markdownStyle),
		glamour.WithWordWrap(markdownWidth),
	)
	if err != nil {
		return src + "\n"
	}
	out, err := r.Render(src)
	if err != nil {
		return src + "\n"
	}
	return out
}
