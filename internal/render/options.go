// Package render turns assistant replies into styled terminal text and
// holds the color themes of the chat interface.
package render

// DefaultWidth is the wrap width used when a caller passes none
const DefaultWidth = 80

// Options is the markdown look of a session. The wrap width is not part
// of it: a Renderer is asked for a width on every reply.
type Options struct {
	// Style is a theme name from AvailableThemes or a path to a JSON file
	Style            string
	Emoji            bool
	PreserveNewLines bool
	TableWrap        bool
	InlineTableLinks bool
}

// DefaultOptions matches the defaults of the markdown config section
func DefaultOptions() Options {
	return Options{
		Style:            ThemeDark,
		Emoji:            true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// WithStyle returns a copy of o using style
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}
