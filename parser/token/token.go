// Copyright © 2024 The dotlint authors

package token

import "fmt"

type Token struct {
	Type   Type
	Text   string
	Source *Location
}

type Type uint

// Type constants used by the R lexer and parser.
const (
	INVALID Type = iota
	ERROR
	EOF

	NEWLINE
	COMMENT

	// Atomic expressions & literals
	IDENT
	NUMBER
	STRING
	CONST // TRUE, FALSE, NULL, NA, Inf, NaN and the typed NA constants

	// Keywords
	FUNCTION
	LAMBDA
	IF
	ELSE
	FOR
	IN
	WHILE
	REPEAT
	BREAK
	NEXT

	// Operators
	OPERATOR  // any binary or unary operator other than "="
	EQ_ASSIGN // "=" which doubles as the argument name separator

	// Delimiters
	COMMA
	SEMICOLON
	PAREN_L
	PAREN_R
	BRACE_L
	BRACE_R
	BRACKET_L
	BRACKET_R
	DBRACKET_L

	numTokenTypes
)

func (typ Type) String() string {
	typeStrings := [numTokenTypes]string{
		INVALID:    "invalid",
		ERROR:      "error",
		EOF:        "EOF",
		NEWLINE:    "newline",
		COMMENT:    "#",
		IDENT:      "identifier",
		NUMBER:     "number",
		STRING:     "string",
		CONST:      "constant",
		FUNCTION:   "function",
		LAMBDA:     `\`,
		IF:         "if",
		ELSE:       "else",
		FOR:        "for",
		IN:         "in",
		WHILE:      "while",
		REPEAT:     "repeat",
		BREAK:      "break",
		NEXT:       "next",
		OPERATOR:   "operator",
		EQ_ASSIGN:  "=",
		COMMA:      ",",
		SEMICOLON:  ";",
		PAREN_L:    "(",
		PAREN_R:    ")",
		BRACE_L:    "{",
		BRACE_R:    "}",
		BRACKET_L:  "[",
		BRACKET_R:  "]",
		DBRACKET_L: "[[",
	}
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

// Keywords maps reserved words to their token type.  Reserved constants map
// to CONST.
var Keywords = map[string]Type{
	"function":      FUNCTION,
	"if":            IF,
	"else":          ELSE,
	"for":           FOR,
	"in":            IN,
	"while":         WHILE,
	"repeat":        REPEAT,
	"break":         BREAK,
	"next":          NEXT,
	"TRUE":          CONST,
	"FALSE":         CONST,
	"NULL":          CONST,
	"NA":            CONST,
	"Inf":           CONST,
	"NaN":           CONST,
	"NA_integer_":   CONST,
	"NA_real_":      CONST,
	"NA_character_": CONST,
	"NA_complex_":   CONST,
}

type Location struct {
	File string // a name representing the source stream
	Path string // a physical location which may differ from File
	Pos  int
	Line int // line number (starting at 1 when tracked)
	Col  int // line column number (starting at 1 when tracked)
}

func (loc *Location) String() string {
	switch {
	case loc.Pos < 0:
		return loc.File
	case loc.Line == 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}

type LocationError struct {
	Err    error
	Source *Location
}

func (err *LocationError) Error() string {
	return fmt.Sprintf("%s: %s", err.Source, err.Err)
}

func (err *LocationError) Unwrap() error {
	return err.Err
}
