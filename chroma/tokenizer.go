// Package chroma provides syntax highlighting of plaintext attachments using
// the chroma library.
package chroma

import (
	"errors"
	"strings"

	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/tasmanium/reportview"
)

// Compile-time interface verification.
var _ reportview.Tokenizer = (*Tokenizer)(nil)

// StyleFunc maps chroma token types to reportview styles.
type StyleFunc func(chromalib.TokenType) reportview.Style

// Tokenizer extracts syntax tokens using chroma.
type Tokenizer struct {
	styleFunc StyleFunc
}

// NewTokenizer creates a new chroma-based tokenizer with the given style function.
// Use StyleFromPalette to create a style function from a reportview.Palette.
func NewTokenizer(styleFunc StyleFunc) (*Tokenizer, error) {
	if styleFunc == nil {
		return nil, errors.New("chroma: styleFunc cannot be nil")
	}
	return &Tokenizer{styleFunc: styleFunc}, nil
}

// TokenizeLines tokenizes source with full context, then splits tokens by line.
// Multi-line constructs such as block comments keep their style on every line.
// Returns nil if the language is not supported or an error occurs.
// Returns an empty slice for empty source.
func (t *Tokenizer) TokenizeLines(language, source string) [][]reportview.Token {
	if source == "" {
		return [][]reportview.Token{}
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		return nil
	}

	// Coalesce for better performance with consecutive tokens of the same type
	lexer = chromalib.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return nil
	}

	var allTokens []reportview.Token
	for token := iterator(); token != chromalib.EOF; token = iterator() {
		allTokens = append(allTokens, reportview.Token{
			Text:  token.Value,
			Style: t.styleFunc(token.Type),
		})
	}

	return splitTokensByLine(allTokens)
}

// splitTokensByLine splits a flat list of tokens into per-line token slices.
func splitTokensByLine(tokens []reportview.Token) [][]reportview.Token {
	if len(tokens) == 0 {
		return [][]reportview.Token{}
	}

	var result [][]reportview.Token
	var currentLine []reportview.Token

	for _, tok := range tokens {
		if !strings.Contains(tok.Text, "\n") {
			currentLine = append(currentLine, tok)
			continue
		}

		parts := strings.Split(tok.Text, "\n")
		for i, part := range parts {
			if part != "" {
				currentLine = append(currentLine, reportview.Token{
					Text:  part,
					Style: tok.Style,
				})
			}
			if i < len(parts)-1 {
				result = append(result, currentLine)
				currentLine = nil
			}
		}
	}

	if len(currentLine) > 0 {
		result = append(result, currentLine)
	}

	return result
}
