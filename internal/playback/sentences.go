package playback

import (
	"strings"
	"unicode/utf8"

	"github.com/jdkato/prose/v2"
)

var cjkTerminators = []rune{'。', '！', '？', '；', '…'}

// SplitSentences breaks text into sentences for synthesis. Latin text is
// segmented by prose; CJK terminators are then split on explicitly since
// the prose model does not know them.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var out []string
	for _, s := range segment(text) {
		out = append(out, splitCJK(s)...)
	}
	return out
}

func segment(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithTokenization(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return []string{text}
	}

	sentences := doc.Sentences()
	if len(sentences) == 0 {
		return []string{text}
	}

	result := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if t := strings.TrimSpace(s.Text); t != "" {
			result = append(result, t)
		}
	}
	return result
}

func splitCJK(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if !isCJKTerminator(r) {
			continue
		}
		end := i + utf8.RuneLen(r)
		if t := strings.TrimSpace(s[start:end]); t != "" && !onlyTerminators(t) {
			out = append(out, t)
		} else if len(out) > 0 {
			out[len(out)-1] += t
		}
		start = end
	}
	if t := strings.TrimSpace(s[start:]); t != "" {
		out = append(out, t)
	}
	return out
}

func isCJKTerminator(r rune) bool {
	for _, t := range cjkTerminators {
		if r == t {
			return true
		}
	}
	return false
}

func onlyTerminators(s string) bool {
	for _, r := range s {
		if !isCJKTerminator(r) {
			return false
		}
	}
	return true
}

func runeCount(sentences []string) int64 {
	var n int64
	for _, s := range sentences {
		n += int64(utf8.RuneCountInString(s))
	}
	return n
}
