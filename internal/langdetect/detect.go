// Package langdetect decides which language model an utterance goes to.
package langdetect

import (
	"unicode"

	"github.com/abadojack/whatlanggo"
)

// Detector maps text to "zh", "en" or "" (unknown).
type Detector struct {
	// MinConfidence is the whatlanggo confidence below which Latin text is
	// assumed to be English. Short utterances rarely reach high confidence.
	MinConfidence float64
}

// New returns a detector with the default confidence floor.
func New() *Detector {
	return &Detector{MinConfidence: 0.5}
}

// Detect returns the language code of text. Any Han character makes the
// utterance Chinese.
func (d *Detector) Detect(text string) string {
	han, latin := countScripts(text)
	switch {
	case han > 0:
		return "zh"
	case latin == 0:
		return ""
	}

	info := whatlanggo.Detect(text)
	switch {
	case info.Lang == whatlanggo.Eng:
		return "en"
	case info.Script == unicode.Latin && info.Confidence < d.MinConfidence:
		return "en"
	}
	return ""
}

func countScripts(text string) (han, latin int) {
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			han++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}
	return han, latin
}
