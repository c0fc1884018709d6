// Package detector guesses the source language of extracted text so
// that --source auto works without asking the translation API.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// sampleRunes caps how much text is fed to the detector; the opening of
// a document is plenty and keeps detection fast on large PDFs.
const sampleRunes = 2000

type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			Build(),
	}
}

// DetectISO returns the lowercase ISO 639-1 code of the detected
// language, or false when the text gives no usable signal.
func (d *Detector) DetectISO(text string) (string, bool) {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return "", false
	}
	if runes := []rune(sample); len(runes) > sampleRunes {
		sample = string(runes[:sampleRunes])
	}

	lang, ok := d.detector.DetectLanguageOf(sample)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
