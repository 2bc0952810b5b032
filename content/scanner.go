package content

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
	"go.uber.org/zap"
)

// Extraction failure classes. Both mean the file contributes nothing to the
// table; the run itself continues.
var (
	ErrMissingKey    = errors.New("no key declaration")
	ErrMissingAnchor = errors.New("no content block")
)

// Options shape what the scanner recognizes.
type Options struct {
	// Anchor introduces the block holding translatable entries.
	Anchor string
	// KeyField declares the namespace key of the file.
	KeyField string
	// DefaultLocaleField holds the fallback string inside a wrapper call.
	DefaultLocaleField string
	// Wrappers lists recognized wrapper function names, empty means any
	// call-shaped value.
	Wrappers []string
	// MaxDepth caps object nesting, deeper blocks are skipped whole.
	MaxDepth int
}

func DefaultOptions() Options {
	return Options{
		Anchor:             "content",
		KeyField:           "key",
		DefaultLocaleField: "defaultLocale",
		MaxDepth:           64,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Anchor == "" {
		o.Anchor = d.Anchor
	}
	if o.KeyField == "" {
		o.KeyField = d.KeyField
	}
	if o.DefaultLocaleField == "" {
		o.DefaultLocaleField = d.DefaultLocaleField
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = d.MaxDepth
	}
	return o
}

// File is the extraction result for a single content source.
type File struct {
	SrcName string
	Key     string
	Root    *Node
	// Truncated is set when the block was not properly terminated or nesting
	// exceeded the configured limit and only a partial tree was kept.
	Truncated bool
	// Omitted counts wrapper calls without a default-locale value.
	Omitted int
}

// Parse scans a single content source and extracts the default-locale string
// of every recognized leaf. Entries that are neither wrapper calls nor nested
// objects are skipped silently. Unterminated blocks terminate the scan and
// keep whatever was collected so far - a malformed file can never abort the
// whole run.
func Parse(data []byte, srcName string, opts Options, log *zap.Logger) (*File, error) {
	if log == nil {
		log = zap.NewNop()
	}
	opts = opts.withDefaults()

	toks := lex(data)

	key, ok := findKey(toks, opts.KeyField)
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrMissingKey, srcName)
	}

	start, ok := findAnchor(toks, opts.Anchor)
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrMissingAnchor, srcName)
	}

	p := &parser{toks: toks, pos: start, opts: opts, log: log}
	root, terminated := p.parseObject(1)

	f := &File{
		SrcName:   srcName,
		Key:       key,
		Root:      root,
		Truncated: !terminated || p.truncated,
		Omitted:   p.omitted,
	}
	if f.Truncated {
		log.Warn("Content block is not properly terminated, keeping partial result",
			zap.String("file", srcName), zap.String("key", key))
	}
	if f.Omitted > 0 {
		log.Debug("Entries without default locale value omitted",
			zap.String("file", srcName), zap.Int("count", f.Omitted))
	}
	return f, nil
}

type token struct {
	tt   js.TokenType
	text string
}

// lex tokenizes the whole source dropping whitespace and comments. Working on
// real ECMAScript tokens means braces and quotes inside string literals,
// templates and comments can never confuse block matching.
func lex(data []byte) []token {
	l := js.NewLexer(parse.NewInputBytes(data))
	var toks []token
	for {
		tt, text := l.Next()
		switch tt {
		case js.ErrorToken:
			// io.EOF or a lexing problem - either way we work with what we have
			return toks
		case js.WhitespaceToken, js.LineTerminatorToken, js.CommentToken, js.CommentLineTerminatorToken:
			continue
		default:
			toks = append(toks, token{tt: tt, text: string(text)})
		}
	}
}

func isIdentName(t token) bool {
	return t.tt == js.IdentifierToken || js.IsIdentifierName(t.tt)
}

func isStringLike(t token) bool {
	return t.tt == js.StringToken || t.tt == js.TemplateToken
}

// findKey locates the first `<field> : <string>` triple.
func findKey(toks []token, field string) (string, bool) {
	for i := 0; i+2 < len(toks); i++ {
		if !isIdentName(toks[i]) || toks[i].text != field {
			continue
		}
		if toks[i+1].tt != js.ColonToken || !isStringLike(toks[i+2]) {
			continue
		}
		if v, ok := unquote(toks[i+2].text); ok {
			return v, true
		}
	}
	return "", false
}

// findAnchor locates the first `<anchor> : {` and returns the index of the
// opening brace.
func findAnchor(toks []token, anchor string) (int, bool) {
	for i := 0; i+2 < len(toks); i++ {
		if !isIdentName(toks[i]) || toks[i].text != anchor {
			continue
		}
		if toks[i+1].tt == js.ColonToken && toks[i+2].tt == js.OpenBraceToken {
			return i + 2, true
		}
	}
	return 0, false
}

type parser struct {
	toks      []token
	pos       int
	opts      Options
	log       *zap.Logger
	truncated bool
	omitted   int
}

func (p *parser) eof() bool  { return p.pos >= len(p.toks) }
func (p *parser) cur() token { return p.toks[p.pos] }
func (p *parser) next()      { p.pos++ }
func (p *parser) peek(n int) (token, bool) {
	if p.pos+n >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos+n], true
}

// parseObject consumes an object starting at the current opening brace and
// returns the extracted node. The boolean is false when input ended before
// the matching close.
func (p *parser) parseObject(depth int) (*Node, bool) {
	node := NewObject()

	p.next() // opening brace

	for !p.eof() {
		switch p.cur().tt {
		case js.CloseBraceToken:
			p.next()
			return node, true
		case js.CommaToken, js.SemicolonToken:
			p.next()
			continue
		}

		key, ok := p.entryKey()
		if !ok {
			// spreads, computed keys, methods - skip to the next sibling
			if !p.skipValue() {
				return node, false
			}
			continue
		}

		switch {
		case p.eof():
			return node, false

		case p.cur().tt == js.OpenBraceToken:
			if depth >= p.opts.MaxDepth {
				p.truncated = true
				p.log.Warn("Nesting limit exceeded, skipping block",
					zap.String("entry", key), zap.Int("max_depth", p.opts.MaxDepth))
				if !p.skipValue() {
					return node, false
				}
				continue
			}
			child, terminated := p.parseObject(depth + 1)
			if child.Len() > 0 {
				node.Put(key, child)
			}
			if !terminated {
				return node, false
			}

		case p.atWrapperCall():
			value, found, terminated := p.parseWrapperCall()
			if found {
				node.Put(key, NewLeaf(value))
			} else {
				p.omitted++
			}
			if !terminated {
				return node, false
			}

		default:
			// unrecognized value shape - silent drop
			if !p.skipValue() {
				return node, false
			}
		}
	}
	return node, false
}

// entryKey matches an `<identifier|string|number> :` entry prefix and
// consumes it. The parser position is left on the value.
func (p *parser) entryKey() (string, bool) {
	cur := p.cur()

	var key string
	switch {
	case isIdentName(cur):
		key = cur.text
	case cur.tt == js.StringToken:
		v, ok := unquote(cur.text)
		if !ok {
			return "", false
		}
		key = v
	case js.IsNumeric(cur.tt):
		key = cur.text
	default:
		return "", false
	}

	colon, ok := p.peek(1)
	if !ok || colon.tt != js.ColonToken {
		return "", false
	}
	p.next()
	p.next()
	return key, true
}

func (p *parser) atWrapperCall() bool {
	cur := p.cur()
	if !isIdentName(cur) {
		return false
	}
	paren, ok := p.peek(1)
	if !ok || paren.tt != js.OpenParenToken {
		return false
	}
	if len(p.opts.Wrappers) == 0 {
		return true
	}
	for _, w := range p.opts.Wrappers {
		if cur.text == w {
			return true
		}
	}
	return false
}

// parseWrapperCall consumes `wrapper( ... )` and captures the first
// default-locale string found inside. Missing value means the leaf is
// omitted, not an error.
func (p *parser) parseWrapperCall() (value string, found, terminated bool) {
	p.next() // wrapper name
	p.next() // opening paren

	depth := 1
	for !p.eof() {
		cur := p.cur()
		switch cur.tt {
		case js.OpenParenToken:
			depth++
		case js.CloseParenToken:
			depth--
			if depth == 0 {
				p.next()
				return value, found, true
			}
		default:
			if !found && isIdentName(cur) && cur.text == p.opts.DefaultLocaleField {
				if colon, ok := p.peek(1); ok && colon.tt == js.ColonToken {
					if val, ok := p.peek(2); ok && isStringLike(val) {
						if v, ok := unquote(val.text); ok {
							value, found = v, true
							p.next()
							p.next()
						}
					}
				}
			}
		}
		p.next()
	}
	return value, found, false
}

// skipValue consumes a value up to the next sibling separator, balancing all
// bracket kinds. It stops before the enclosing closing brace and after a
// top-level comma. Returns false when input ended first.
func (p *parser) skipValue() bool {
	depth := 0
	for !p.eof() {
		switch p.cur().tt {
		case js.OpenBraceToken, js.OpenParenToken, js.OpenBracketToken:
			depth++
		case js.CloseParenToken, js.CloseBracketToken:
			if depth > 0 {
				depth--
			}
		case js.CloseBraceToken:
			if depth == 0 {
				return true
			}
			depth--
		case js.CommaToken:
			if depth == 0 {
				p.next()
				return true
			}
		}
		p.next()
	}
	return false
}

// unquote strips quotes from a string or substitution-free template literal
// and decodes escapes. Templates with substitutions never arrive here as a
// single token, so they are naturally treated as missing values.
func unquote(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	q := s[0]
	if (q != '\'' && q != '"' && q != '`') || s[len(s)-1] != q {
		return "", false
	}
	return decodeEscapes(s[1 : len(s)-1]), true
}

func decodeEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			i++
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
			i++
		case 't':
			b.WriteByte('\t')
			i++
		case 'r':
			b.WriteByte('\r')
			i++
		case 'b':
			b.WriteByte('\b')
			i++
		case 'f':
			b.WriteByte('\f')
			i++
		case 'v':
			b.WriteByte('\v')
			i++
		case '0':
			b.WriteByte(0)
			i++
		case 'x':
			if i+2 < len(s) {
				if n, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
					b.WriteRune(rune(n))
					i += 3
					continue
				}
			}
			b.WriteByte(s[i])
			i++
		case 'u':
			if r, adv, ok := decodeUnicodeEscape(s[i:]); ok {
				// astral code points are written as surrogate pair escapes,
				// combine the halves into a single rune
				if utf16.IsSurrogate(r) && i+adv+1 < len(s) && s[i+adv] == '\\' && s[i+adv+1] == 'u' {
					if r2, adv2, ok := decodeUnicodeEscape(s[i+adv+1:]); ok {
						if c := utf16.DecodeRune(r, r2); c != unicode.ReplacementChar {
							b.WriteRune(c)
							i += adv + 1 + adv2
							continue
						}
					}
				}
				b.WriteRune(r)
				i += adv
				continue
			}
			b.WriteByte(s[i])
			i++
		case '\n':
			// line continuation
			i++
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}

// decodeUnicodeEscape handles the tail after the backslash: uXXXX or u{...}.
func decodeUnicodeEscape(s string) (rune, int, bool) {
	if len(s) < 2 {
		return 0, 0, false
	}
	if s[1] == '{' {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, false
		}
		n, err := strconv.ParseUint(s[2:end], 16, 32)
		if err != nil {
			return 0, 0, false
		}
		return rune(n), end + 1, true
	}
	if len(s) < 5 {
		return 0, 0, false
	}
	n, err := strconv.ParseUint(s[1:5], 16, 32)
	if err != nil {
		return 0, 0, false
	}
	return rune(n), 5, true
}
