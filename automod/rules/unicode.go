package rules

import (
	"context"
	"unicode"

	"github.com/rivo/uniseg"

	"github.com/tppcore/modbot/automod"
	"github.com/tppcore/modbot/chat"
)

var (
	// combining marks a single grapheme may carry before it counts as zalgo
	MaxMarksPerGrapheme = 2
	// zalgo graphemes which get a message deleted outright
	ZalgoDeleteThreshold = 10
	// messages with fewer graphemes are never checked for symbol spam
	SymbolMinGraphemes = 10
	// share of symbol graphemes above which points are given
	SymbolRatioThreshold = 0.5
	PointsPerSymbol      = 3
)

var symbolCategories = []*unicode.RangeTable{unicode.So, unicode.Co, unicode.Sk}

// Looks at the unicode categories of each grapheme in a message. Heavy stacks of
// combining marks (zalgo text) get the message deleted; messages mostly made of
// symbols, pictographs or private-use characters give points.
type UnicodeCategoryRule struct{}

var _ automod.Rule = (*UnicodeCategoryRule)(nil)

func (r *UnicodeCategoryRule) ID() string { return "unicode-category" }

type graphemeStats struct {
	total   int
	zalgo   int
	symbols int
}

func analyzeGraphemes(s string) graphemeStats {
	var st graphemeStats
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		runes := gr.Runes()
		st.total++
		marks := 0
		for _, c := range runes {
			if unicode.In(c, unicode.Mn, unicode.Me) {
				marks++
			}
		}
		if marks > MaxMarksPerGrapheme {
			st.zalgo++
		}
		if unicode.In(runes[0], symbolCategories...) {
			st.symbols++
		}
	}
	return st
}

func (r *UnicodeCategoryRule) Check(ctx context.Context, msg chat.Message) (automod.Result, error) {
	st := analyzeGraphemes(msg.Text)
	if st.zalgo >= ZalgoDeleteThreshold {
		return automod.DeleteMessage(), nil
	}
	if st.total < SymbolMinGraphemes {
		return automod.Nothing(), nil
	}
	if float64(st.symbols)/float64(st.total) > SymbolRatioThreshold {
		return automod.GivePoints(st.symbols * PointsPerSymbol), nil
	}
	return automod.Nothing(), nil
}
