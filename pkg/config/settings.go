package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/arthur-debert/dodex/pkg/pattern"
)

// OutputMode selects where missing links are written.
type OutputMode string

const (
	OutputIndex OutputMode = "index"
	OutputFile  OutputMode = "file"
	OutputNone  OutputMode = "none"
)

// NestingMode selects how files of nested folders reach an ancestor index.
type NestingMode string

const (
	NestingNone NestingMode = "none"
	NestingAll  NestingMode = "all"
	// NestingNoIndex folds in nested folders without an index of their own,
	// and the nested index files themselves otherwise.
	NestingNoIndex NestingMode = "no_index"
)

// CanvasPosition is the corner of a canvas where new nodes are stacked.
type CanvasPosition string

const (
	TopLeft     CanvasPosition = "top_left"
	TopRight    CanvasPosition = "top_right"
	BottomLeft  CanvasPosition = "bottom_left"
	BottomRight CanvasPosition = "bottom_right"
)

// IsLeft reports whether the column goes left of existing nodes.
func (p CanvasPosition) IsLeft() bool { return p == TopLeft || p == BottomLeft }

// IsTop reports whether the column aligns to the top of existing nodes.
func (p CanvasPosition) IsTop() bool { return p == TopLeft || p == TopRight }

// LinkStyle selects the syntax of generated links.
type LinkStyle string

const (
	LinkWiki     LinkStyle = "wiki"
	LinkMarkdown LinkStyle = "markdown"
)

// Duration is a time.Duration written as a Go duration string in TOML.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// CanvasSettings controls placement of nodes added to canvas indexes.
type CanvasSettings struct {
	Group      bool           `koanf:"group" toml:"group"`
	GroupLabel string         `koanf:"group_label" toml:"group_label"`
	Position   CanvasPosition `koanf:"position" toml:"position"`
	NoteWidth  int            `koanf:"note_width" toml:"note_width"`
	NoteHeight int            `koanf:"note_height" toml:"note_height"`
}

// TimingSettings holds the settle and debounce windows.
type TimingSettings struct {
	StartupSettle Duration `koanf:"startup_settle" toml:"startup_settle"`
	CanvasSettle  Duration `koanf:"canvas_settle" toml:"canvas_settle"`
	CheckDebounce Duration `koanf:"check_debounce" toml:"check_debounce"`
}

// Settings is the complete dodex configuration.
type Settings struct {
	IndexPattern        string         `koanf:"index_pattern" toml:"index_pattern"`
	UseRootIndexPattern bool           `koanf:"use_root_index_pattern" toml:"use_root_index_pattern"`
	RootIndexPattern    string         `koanf:"root_index_pattern" toml:"root_index_pattern"`
	IgnorePatterns      string         `koanf:"ignore_patterns" toml:"ignore_patterns"`
	OutputMode          OutputMode     `koanf:"output_mode" toml:"output_mode"`
	CanvasOutputMode    OutputMode     `koanf:"canvas_output_mode" toml:"canvas_output_mode"`
	NestingMode         NestingMode    `koanf:"nesting_mode" toml:"nesting_mode"`
	AllFiles            bool           `koanf:"all_files" toml:"all_files"`
	LinksFormat         string         `koanf:"links_format" toml:"links_format"`
	Prepend             bool           `koanf:"prepend" toml:"prepend"`
	OutputFilePattern   string         `koanf:"output_file_pattern" toml:"output_file_pattern"`
	MarkOnWrite         bool           `koanf:"mark_on_write" toml:"mark_on_write"`
	StartupCheck        bool           `koanf:"startup_check" toml:"startup_check"`
	LinkStyle           LinkStyle      `koanf:"link_style" toml:"link_style"`
	LinkCache           bool           `koanf:"link_cache" toml:"link_cache"`
	Concurrency         int            `koanf:"concurrency" toml:"concurrency"`
	Canvas              CanvasSettings `koanf:"canvas" toml:"canvas"`
	Timing              TimingSettings `koanf:"timing" toml:"timing"`
}

// OutputModeFor returns the output mode for an index with the given extension.
func (s *Settings) OutputModeFor(extension string) OutputMode {
	if extension == "canvas" && s.CanvasOutputMode != "" {
		return s.CanvasOutputMode
	}
	return s.OutputMode
}

// Normalize replaces invalid values with defaults and returns a warning per
// replaced value. Loading never fails on a bad value.
func (s *Settings) Normalize() []string {
	var warnings []string
	warn := func(key string, value interface{}, fallback interface{}) {
		warnings = append(warnings, fmt.Sprintf("invalid %s %q, using %v", key, fmt.Sprint(value), fallback))
	}

	switch s.OutputMode {
	case OutputIndex, OutputFile, OutputNone:
	default:
		warn("output_mode", s.OutputMode, OutputIndex)
		s.OutputMode = OutputIndex
	}
	switch s.CanvasOutputMode {
	case "", OutputIndex, OutputFile, OutputNone:
	default:
		warn("canvas_output_mode", s.CanvasOutputMode, `""`)
		s.CanvasOutputMode = ""
	}
	switch s.NestingMode {
	case NestingNone, NestingAll, NestingNoIndex:
	default:
		warn("nesting_mode", s.NestingMode, NestingNone)
		s.NestingMode = NestingNone
	}
	switch s.LinkStyle {
	case LinkWiki, LinkMarkdown:
	default:
		warn("link_style", s.LinkStyle, LinkWiki)
		s.LinkStyle = LinkWiki
	}
	switch s.Canvas.Position {
	case TopLeft, TopRight, BottomLeft, BottomRight:
	default:
		warn("canvas.position", s.Canvas.Position, BottomRight)
		s.Canvas.Position = BottomRight
	}

	if strings.TrimSpace(s.IndexPattern) == "" {
		warn("index_pattern", s.IndexPattern, pattern.Folder)
		s.IndexPattern = string(pattern.Folder)
	}
	if strings.TrimSpace(s.RootIndexPattern) == "" {
		s.RootIndexPattern = string(pattern.Vault)
	}
	if !strings.Contains(s.LinksFormat, string(pattern.Links)) {
		s.LinksFormat += string(pattern.Links)
	}
	s.OutputFilePattern = strings.TrimSpace(s.OutputFilePattern)
	if s.OutputFilePattern == "" || strings.ContainsAny(s.OutputFilePattern, `/\`) || strings.Contains(s.OutputFilePattern, "..") {
		warn("output_file_pattern", s.OutputFilePattern, "_"+string(pattern.Folder))
		s.OutputFilePattern = "_" + string(pattern.Folder)
	}
	if s.Concurrency < 1 {
		warn("concurrency", s.Concurrency, 8)
		s.Concurrency = 8
	}
	if s.Canvas.NoteWidth <= 0 {
		warn("canvas.note_width", s.Canvas.NoteWidth, 400)
		s.Canvas.NoteWidth = 400
	}
	if s.Canvas.NoteHeight <= 0 {
		warn("canvas.note_height", s.Canvas.NoteHeight, 400)
		s.Canvas.NoteHeight = 400
	}
	if s.Timing.StartupSettle < 0 {
		s.Timing.StartupSettle = 0
	}
	if s.Timing.CanvasSettle < 0 {
		s.Timing.CanvasSettle = 0
	}
	if s.Timing.CheckDebounce < 0 {
		s.Timing.CheckDebounce = 0
	}
	return warnings
}
