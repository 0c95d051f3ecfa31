// Package highlight splits document text into plain and highlighted
// segments for a set of unfamiliar words.
package highlight

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mindsync-ai/mindsync/internal/api"
)

// Segment is a run of document text. Highlighted segments are occurrences
// of an unfamiliar word and carry its definition as Tooltip.
type Segment struct {
	Text        string
	Highlighted bool
	Word        string // the unfamiliar word key that produced the match
	Tooltip     string
}

// Tokenize matches each word case-insensitively on word boundaries, in
// list order. A later word only matches inside text no earlier word has
// claimed, so segments never nest. Matched text keeps the document's
// own casing. Boundaries are Unicode-aware: "café" and "élan" match as
// whole words in any script.
func Tokenize(text string, words []api.UnfamiliarWord) []Segment {
	if text == "" {
		return nil
	}
	segs := []Segment{{Text: text}}

	for _, w := range words {
		if strings.TrimSpace(w.Word) == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(w.Word))
		if err != nil {
			continue
		}
		segs = split(segs, re, w)
	}
	return segs
}

func split(segs []Segment, re *regexp.Regexp, w api.UnfamiliarWord) []Segment {
	out := make([]Segment, 0, len(segs))
	for _, s := range segs {
		if s.Highlighted {
			out = append(out, s)
			continue
		}
		locs := wholeWords(s.Text, re)
		if len(locs) == 0 {
			out = append(out, s)
			continue
		}
		last := 0
		for _, loc := range locs {
			if loc[0] > last {
				out = append(out, Segment{Text: s.Text[last:loc[0]]})
			}
			out = append(out, Segment{
				Text:        s.Text[loc[0]:loc[1]],
				Highlighted: true,
				Word:        w.Word,
				Tooltip:     w.Definition,
			})
			last = loc[1]
		}
		if last < len(s.Text) {
			out = append(out, Segment{Text: s.Text[last:]})
		}
	}
	return out
}

// wholeWords returns the non-overlapping matches of re in text that are
// not glued to a word rune on either side. RE2 has no lookaround and its
// \b only knows ASCII, so boundaries are checked here.
func wholeWords(text string, re *regexp.Regexp) [][2]int {
	var locs [][2]int
	for off := 0; off < len(text); {
		loc := re.FindStringIndex(text[off:])
		if loc == nil || loc[0] == loc[1] {
			break
		}
		start, end := off+loc[0], off+loc[1]
		if atBoundary(text, start, end) {
			locs = append(locs, [2]int{start, end})
			off = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		off = start + size
	}
	return locs
}

func atBoundary(text string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// Occurrences counts highlighted segments produced by word.
func Occurrences(segs []Segment, word string) int {
	n := 0
	for _, s := range segs {
		if s.Highlighted && s.Word == word {
			n++
		}
	}
	return n
}

// RemoveWord returns words without every entry whose Word equals word
// exactly. The input slice is not modified.
func RemoveWord(words []api.UnfamiliarWord, word string) []api.UnfamiliarWord {
	out := make([]api.UnfamiliarWord, 0, len(words))
	for _, w := range words {
		if w.Word != word {
			out = append(out, w)
		}
	}
	return out
}
