package chroma

import (
	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/tasmanium/reportview"
)

// StyleFromPalette returns a function that maps chroma token types to
// attachment styles based on the palette colors. Types are matched by
// category so every keyword, string or number variant is covered.
func StyleFromPalette(p reportview.Palette) StyleFunc {
	return func(tt chromalib.TokenType) reportview.Style {
		switch tt {
		case chromalib.KeywordType:
			return reportview.Style{Foreground: p.Type, Bold: true}
		case chromalib.NameFunction, chromalib.NameFunctionMagic:
			return reportview.Style{Foreground: p.Function}
		case chromalib.NameBuiltin, chromalib.NameBuiltinPseudo:
			return reportview.Style{Foreground: p.Type}
		case chromalib.NameConstant, chromalib.KeywordConstant:
			return reportview.Style{Foreground: p.Constant}
		case chromalib.GenericError, chromalib.GenericTraceback, chromalib.GenericDeleted:
			return reportview.Style{Foreground: p.Number, Bold: true}
		case chromalib.GenericHeading, chromalib.GenericSubheading, chromalib.GenericStrong:
			return reportview.Style{Foreground: p.Keyword, Bold: true}
		case chromalib.GenericInserted:
			return reportview.Style{Foreground: p.String}
		case chromalib.Punctuation:
			return reportview.Style{Foreground: p.Punctuation}
		}

		switch {
		case tt.InCategory(chromalib.Keyword):
			return reportview.Style{Foreground: p.Keyword, Bold: true}
		case tt.InCategory(chromalib.Comment):
			return reportview.Style{Foreground: p.Comment}
		case tt.InSubCategory(chromalib.String):
			return reportview.Style{Foreground: p.String}
		case tt.InSubCategory(chromalib.Number):
			return reportview.Style{Foreground: p.Number}
		case tt.InCategory(chromalib.Operator):
			return reportview.Style{Foreground: p.Operator}
		}
		return reportview.Style{}
	}
}
