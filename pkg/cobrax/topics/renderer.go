package topics

// Renderer formats a topic for the terminal. format is the file extension
// of the topic, dot included.
type Renderer interface {
	Render(content string, format string) string
}

// PlainRenderer prints topics as written.
type PlainRenderer struct{}

func (r *PlainRenderer) Render(content string, format string) string {
	return content
}
