package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// maxCachedReplies bounds the finished-reply cache of a Renderer
const maxCachedReplies = 256

type replyKey struct {
	width int
	text  string
}

// Renderer draws assistant replies for chat bubbles. It builds one glamour
// renderer per bubble width and remembers finished replies, so redrawing
// an unchanged transcript is a map lookup. glamour renderers are not safe
// for concurrent use; calls are serialized.
type Renderer struct {
	opts Options

	mu      sync.Mutex
	byWidth map[int]*glamour.TermRenderer
	replies map[replyKey]string
}

// NewRenderer creates a Renderer for one session's look
func NewRenderer(opts Options) *Renderer {
	return &Renderer{
		opts:    opts,
		byWidth: make(map[int]*glamour.TermRenderer),
		replies: make(map[replyKey]string),
	}
}

// Reply renders text wrapped to width. The text is returned verbatim when
// it is blank or cannot be rendered, so a message is never lost.
func (r *Renderer) Reply(text string, width int) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	if width <= 0 {
		width = DefaultWidth
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := replyKey{width: width, text: text}
	if out, ok := r.replies[key]; ok {
		return out
	}

	tr, err := r.termRenderer(width)
	if err != nil {
		return text
	}
	out, err := tr.Render(text)
	if err != nil {
		return text
	}
	// glamour pads the document with blank lines
	out = strings.Trim(out, "\n")

	if len(r.replies) >= maxCachedReplies {
		r.replies = make(map[replyKey]string)
	}
	r.replies[key] = out
	return out
}

// termRenderer returns the glamour renderer for width. Callers hold r.mu.
func (r *Renderer) termRenderer(width int) (*glamour.TermRenderer, error) {
	if tr, ok := r.byWidth[width]; ok {
		return tr, nil
	}

	opts := []glamour.TermRendererOption{
		glamour.WithStylePath(ResolveStyle(r.opts.Style)),
		glamour.WithWordWrap(width),
		glamour.WithTableWrap(r.opts.TableWrap),
		glamour.WithInlineTableLinks(r.opts.InlineTableLinks),
	}
	if r.opts.Emoji {
		opts = append(opts, glamour.WithEmoji())
	}
	if r.opts.PreserveNewLines {
		opts = append(opts, glamour.WithPreservedNewLines())
	}

	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	r.byWidth[width] = tr
	return tr, nil
}
