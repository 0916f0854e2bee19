package keyword

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonTokenChars = regexp.MustCompile(`[^\pL\pN\s]+`)
	nonSlugChars  = regexp.MustCompile(`[^\pL\pN]+`)
)

func foldMarks(s string) string {
	// this needs to be re-defined in every call to prevent a race condition
	normFunc := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(normFunc, s)
	if err != nil {
		slog.Warn("unicode normalization error", "err", err)
		return s
	}
	return out
}

// Splits free-form chat text in to tokens, including lower-case, unicode normalization, and some unicode folding.
//
// The intent is for this to work similarly to an NLP tokenizer, and enable fast matching to a list of known tokens or phrases.
func TokenizeText(text string) []string {
	split := strings.ToLower(nonTokenChars.ReplaceAllString(text, " "))
	return strings.Fields(foldMarks(split))
}

// Lower-cases a login or name and strips everything but letters and digits, folding
// accents, so "Fréé_Viewers" and "freeviewers" compare equal.
func Slugify(orig string) string {
	return strings.ToLower(nonSlugChars.ReplaceAllString(foldMarks(orig), ""))
}

// Canonical form of a chat message, for comparing messages which differ only in case,
// punctuation, accents or spacing.
func NormalizeText(text string) string {
	return strings.Join(TokenizeText(text), " ")
}

func splitIdentRune(c rune) bool {
	return !unicode.IsLetter(c) && !unicode.IsNumber(c)
}

// Splits an identifier (eg, a chat login) in to tokens. Removes any single-character tokens.
//
// For example, free_viewers_bot would be split in to ["free", "viewers", "bot"]
func TokenizeIdentifier(orig string) []string {
	fields := strings.FieldsFunc(orig, splitIdentRune)
	out := make([]string, 0, len(fields))
	for _, v := range fields {
		tok := Slugify(v)
		if len(tok) > 1 {
			out = append(out, tok)
		}
	}
	return out
}
