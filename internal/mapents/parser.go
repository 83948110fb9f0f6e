package mapents

import (
	"errors"
	"fmt"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// ErrMalformedEntityBlock is wrapped by every Parse error caused by input
// that cannot be split into well-formed key/value groups.
var ErrMalformedEntityBlock = errors.New("malformed entity block")

// TokenResolver maps a raw attribute key reference (a token index or a
// literal key, without quotes) to the attribute name it stands for.
type TokenResolver func(ref string) string

const (
	tokenOpen = iota
	tokenClose
	tokenString
	tokenWord
)

var tokenNames = map[int]string{
	tokenOpen:   "'{'",
	tokenClose:  "'}'",
	tokenString: "quoted string",
	tokenWord:   "bare word",
}

var lexer *lexmachine.Lexer

func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`\{`), token(tokenOpen))
	lexer.Add([]byte(`\}`), token(tokenClose))
	lexer.Add([]byte(`"[^"]*"`), token(tokenString))
	lexer.Add([]byte(`[a-zA-Z0-9_.$\-]+`), token(tokenWord))
	lexer.Add([]byte(`//[^\n]*`), skip)
	lexer.Add([]byte(`\s+`), skip)
	if err := lexer.Compile(); err != nil {
		panic(fmt.Sprintf("mapents: compiling lexer: %v", err))
	}
}

func token(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

type parseState int

const (
	expectOpen parseState = iota
	expectKey
	expectValue
)

// Parse splits an entity-data block into entities. Every key is passed
// through resolve, whether it was written as a bare token reference or as a
// quoted literal; values are stored verbatim.
//
// Precondition: resolve must be non-nil.
// Postcondition: Returns a Store with one Entity per brace group, or an error
// wrapping ErrMalformedEntityBlock.
func Parse(data []byte, resolve TokenResolver) (*Store, error) {
	if resolve == nil {
		return nil, errors.New("mapents: nil token resolver")
	}

	scanner, err := lexer.Scanner(data)
	if err != nil {
		return nil, fmt.Errorf("mapents: creating scanner: %w", err)
	}

	store := &Store{}
	state := expectOpen
	var (
		cur *Entity
		key string
		at  *lexmachine.Token
	)
	for tok, err, eos := scanner.Next(); !eos; tok, err, eos = scanner.Next() {
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEntityBlock, err)
		}
		t := tok.(*lexmachine.Token)
		at = t

		switch state {
		case expectOpen:
			if t.Type != tokenOpen {
				return nil, malformed(t, "expected '{'")
			}
			cur = newEntity()
			state = expectKey
		case expectKey:
			switch t.Type {
			case tokenClose:
				store.entities = append(store.entities, cur)
				cur = nil
				state = expectOpen
			case tokenString:
				key = resolve(unquote(t.Value.(string)))
				state = expectValue
			case tokenWord:
				key = resolve(t.Value.(string))
				state = expectValue
			default:
				return nil, malformed(t, "expected key or '}'")
			}
		case expectValue:
			if t.Type != tokenString {
				return nil, malformed(t, fmt.Sprintf("expected quoted value for key %q", key))
			}
			cur.set(key, unquote(t.Value.(string)))
			state = expectKey
		}
	}

	if state != expectOpen {
		if at == nil {
			return nil, fmt.Errorf("%w: unterminated entity", ErrMalformedEntityBlock)
		}
		return nil, fmt.Errorf("%w: unterminated entity after line %d", ErrMalformedEntityBlock, at.EndLine)
	}
	return store, nil
}

func malformed(t *lexmachine.Token, msg string) error {
	return fmt.Errorf("%w: line %d column %d: %s, got %s %q",
		ErrMalformedEntityBlock, t.StartLine, t.StartColumn, msg, tokenNames[t.Type], t.Lexeme)
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
