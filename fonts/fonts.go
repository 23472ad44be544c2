// Package fonts resolves the three faces used by the overlay: body, bold and italic.
//
// Custom TrueType files are preferred. When a file is missing or unreadable the
// built-in Times face of the same style is used and a warning is logged.
package fonts

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/image/font/sfnt"

	"github.com/zeptools/docoverlay/style"
)

// Face is one registered font. Data is nil for a built-in core font.
type Face struct {
	Family string
	Style  string // "", "B" or "I"
	Data   []byte
}

func (f Face) Builtin() bool {
	return f.Data == nil
}

type FontSet struct {
	Body   Face
	Bold   Face
	Italic Face
}

// Face returns the face for s. Unknown styles get the body face.
func (fs FontSet) Face(s style.Style) Face {
	switch s {
	case style.Bold:
		return fs.Bold
	case style.Italic:
		return fs.Italic
	default:
		return fs.Body
	}
}

// Set replaces the face used for s. Unknown styles replace the body face.
func (fs *FontSet) Set(s style.Style, f Face) {
	switch s {
	case style.Bold:
		fs.Bold = f
	case style.Italic:
		fs.Italic = f
	default:
		fs.Body = f
	}
}

const (
	BuiltinFamily = "Times"
	CustomFamily  = "TimesNewRoman"
)

// Default file names looked up under the fonts dir.
var FileNames = map[style.Style]string{
	style.Body:   "Times New Roman.ttf",
	style.Bold:   "Times New Roman Bold.ttf",
	style.Italic: "Times New Roman Italic.ttf",
}

var styleCodes = map[style.Style]string{
	style.Body:   "",
	style.Bold:   "B",
	style.Italic: "I",
}

func Builtin() FontSet {
	return FontSet{
		Body:   Face{Family: BuiltinFamily, Style: ""},
		Bold:   Face{Family: BuiltinFamily, Style: "B"},
		Italic: Face{Family: BuiltinFamily, Style: "I"},
	}
}

type FontLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *FontLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("font load error [%s]: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("font load error [%s]: %s", e.Path, e.Message)
}

func (e *FontLoadError) Unwrap() error {
	return e.Cause
}

// Load reads one TrueType file into a Face of the given style.
func Load(path string, s style.Style) (Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Face{}, &FontLoadError{Path: path, Message: "read failed", Cause: err}
	}
	if !isTrueType(data) {
		return Face{}, &FontLoadError{Path: path, Message: "not a TrueType font"}
	}
	if _, err = sfnt.Parse(data); err != nil {
		return Face{}, &FontLoadError{Path: path, Message: "malformed TrueType font", Cause: err}
	}
	return Face{Family: CustomFamily, Style: styleCodes[s], Data: data}, nil
}

// Resolve loads the custom faces from dir, falling back per face to the
// built-in Times. An empty dir means built-in only.
func Resolve(dir string) FontSet {
	set := Builtin()
	if dir == "" {
		return set
	}
	for _, s := range []style.Style{style.Body, style.Bold, style.Italic} {
		face, err := Load(filepath.Join(dir, FileNames[s]), s)
		if err != nil {
			log.Printf("[WARN][FONTS] %v; using built-in %s %s", err, BuiltinFamily, s)
			continue
		}
		set.Set(s, face)
	}
	return set
}

var (
	sfntVersion1 = []byte{0x00, 0x01, 0x00, 0x00}
	sfntTrue     = []byte("true")
)

func isTrueType(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	return bytes.HasPrefix(data, sfntVersion1) || bytes.HasPrefix(data, sfntTrue)
}
