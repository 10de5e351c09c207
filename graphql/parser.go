// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package graphql

import (
	"fmt"
	"strconv"
	"strings"

	"rivaas.dev/corehttp/errors"
)

// parser is a minimal hand-rolled recursive-descent parser over the
// subset of GraphQL query-document syntax this executor supports:
// a single operation (named or anonymous, query/mutation/subscription),
// nested selection sets, field aliases, and arguments whose values are
// literals (int, float, string, boolean, null, enum) or variable
// references ("$name"). Fragments and directives (@include/@skip) are
// not supported; the GraphQL grammar covered here is the subset the
// executor can actually run.
type parser struct {
	src    string
	pos    int
	line   int
	col    int
	peeked *token
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokName
	tokInt
	tokFloat
	tokString
	tokPunct
	tokVariable // $name
)

type token struct {
	kind tokenKind
	text string
	loc  Location
}

// ParseErr is a syntax error carrying a source location, surfaced as a
// GraphQL response error rather than an HTTP-level failure.
type ParseErr struct {
	Message string
	Loc     Location
}

func (e *ParseErr) Error() string { return e.Message }

// Parse parses src as a single GraphQL operation.
func Parse(src string) (*Operation, error) {
	p := &parser{src: src, line: 1, col: 1}
	op, err := p.parseOperation()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, &ParseErr{Message: "unexpected trailing input", Loc: tok.loc}
	}
	return op, nil
}

func (p *parser) parseOperation() (*Operation, error) {
	op := &Operation{Kind: OperationQuery}

	tok := p.peek()
	op.Loc = tok.loc

	if tok.kind == tokName {
		switch tok.text {
		case "query":
			op.Kind = OperationQuery
			p.next()
		case "mutation":
			op.Kind = OperationMutation
			p.next()
		case "subscription":
			op.Kind = OperationSubscription
			p.next()
		}

		if nameTok := p.peek(); nameTok.kind == tokName {
			op.Name = nameTok.text
			p.next()
		}

		if p.peek().kind == tokPunct && p.peek().text == "(" {
			if err := p.skipVariableDefinitions(); err != nil {
				return nil, err
			}
		}
	}

	sel, err := p.parseSelectionSet()
	if err != nil {
		return nil, err
	}
	op.Selection = sel
	return op, nil
}

// skipVariableDefinitions consumes "(...)" after the operation name.
// Variable *types* are not validated by this implementation — values
// supplied in the request's variables map are trusted as-is and coerced
// at resolution time, not inside the parser.
func (p *parser) skipVariableDefinitions() error {
	if err := p.expectPunct("("); err != nil {
		return err
	}
	depth := 1
	for depth > 0 {
		tok := p.next()
		if tok.kind == tokEOF {
			return &ParseErr{Message: "unexpected EOF in variable definitions", Loc: tok.loc}
		}
		if tok.kind == tokPunct {
			switch tok.text {
			case "(":
				depth++
			case ")":
				depth--
			}
		}
	}
	return nil
}

func (p *parser) parseSelectionSet() ([]*FieldSelection, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}

	var fields []*FieldSelection
	for {
		tok := p.peek()
		if tok.kind == tokPunct && tok.text == "}" {
			p.next()
			return fields, nil
		}
		if tok.kind == tokEOF {
			return nil, &ParseErr{Message: "unexpected EOF in selection set", Loc: tok.loc}
		}
		if tok.kind == tokPunct && tok.text == "..." {
			return nil, &ParseErr{Message: "fragments are not supported", Loc: tok.loc}
		}

		field, err := p.parseField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
}

func (p *parser) parseField() (*FieldSelection, error) {
	nameTok := p.peek()
	if nameTok.kind != tokName {
		return nil, &ParseErr{Message: "expected field name", Loc: nameTok.loc}
	}
	p.next()

	f := &FieldSelection{Name: nameTok.text, Loc: nameTok.loc}

	if colon := p.peek(); colon.kind == tokPunct && colon.text == ":" {
		p.next()
		aliasedName := p.peek()
		if aliasedName.kind != tokName {
			return nil, &ParseErr{Message: "expected field name after alias", Loc: aliasedName.loc}
		}
		p.next()
		f.Alias = f.Name
		f.Name = aliasedName.text
	}

	if paren := p.peek(); paren.kind == tokPunct && paren.text == "(" {
		args, err := p.parseArguments()
		if err != nil {
			return nil, err
		}
		f.Args = args
	}

	if brace := p.peek(); brace.kind == tokPunct && brace.text == "{" {
		sel, err := p.parseSelectionSet()
		if err != nil {
			return nil, err
		}
		f.Selection = sel
	}

	return f, nil
}

func (p *parser) parseArguments() (map[string]ArgValue, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	args := map[string]ArgValue{}
	for {
		tok := p.peek()
		if tok.kind == tokPunct && tok.text == ")" {
			p.next()
			return args, nil
		}
		if tok.kind != tokName {
			return nil, &ParseErr{Message: "expected argument name", Loc: tok.loc}
		}
		p.next()
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		args[tok.text] = val
	}
}

func (p *parser) parseValue() (ArgValue, error) {
	tok := p.peek()
	switch tok.kind {
	case tokVariable:
		p.next()
		return ArgValue{IsVariable: true, VarName: tok.text}, nil
	case tokInt:
		p.next()
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return ArgValue{}, &ParseErr{Message: "invalid integer literal", Loc: tok.loc}
		}
		return ArgValue{Literal: IntValue(n)}, nil
	case tokFloat:
		p.next()
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return ArgValue{}, &ParseErr{Message: "invalid float literal", Loc: tok.loc}
		}
		return ArgValue{Literal: FloatValue(f)}, nil
	case tokString:
		p.next()
		return ArgValue{Literal: StringValue(tok.text)}, nil
	case tokName:
		p.next()
		switch tok.text {
		case "true":
			return ArgValue{Literal: BoolValue(true)}, nil
		case "false":
			return ArgValue{Literal: BoolValue(false)}, nil
		case "null":
			return ArgValue{Literal: Null()}, nil
		default:
			return ArgValue{Literal: EnumValue(tok.text)}, nil
		}
	case tokPunct:
		if tok.text == "[" {
			return p.parseListValue()
		}
		return ArgValue{}, &ParseErr{Message: "unexpected token in value position", Loc: tok.loc}
	default:
		return ArgValue{}, &ParseErr{Message: "unexpected token in value position", Loc: tok.loc}
	}
}

func (p *parser) parseListValue() (ArgValue, error) {
	p.next() // consume '['
	var items []Value
	for {
		tok := p.peek()
		if tok.kind == tokPunct && tok.text == "]" {
			p.next()
			return ArgValue{Literal: ListValue(items)}, nil
		}
		v, err := p.parseValue()
		if err != nil {
			return ArgValue{}, err
		}
		if v.IsVariable {
			return ArgValue{}, &ParseErr{Message: "variables are not supported inside list literals", Loc: tok.loc}
		}
		items = append(items, v.Literal)
	}
}

func (p *parser) expectPunct(s string) error {
	tok := p.next()
	if tok.kind != tokPunct || tok.text != s {
		return &ParseErr{Message: fmt.Sprintf("expected %q, got %q", s, tok.text), Loc: tok.loc}
	}
	return nil
}

func (p *parser) peek() token {
	if p.peeked == nil {
		t := p.lex()
		p.peeked = &t
	}
	return *p.peeked
}

func (p *parser) next() token {
	t := p.peek()
	p.peeked = nil
	return t
}

// lex scans exactly one token starting at p.pos, skipping whitespace,
// commas (GraphQL treats commas as insignificant whitespace), and
// comments.
func (p *parser) lex() token {
	for p.pos < len(p.src) {
		r := p.src[p.pos]
		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == ',':
			p.advance(1)
		case r == '\n':
			p.pos++
			p.line++
			p.col = 1
		case r == '#':
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
		default:
			return p.lexToken()
		}
	}
	return token{kind: tokEOF, loc: p.here()}
}

func (p *parser) lexToken() token {
	loc := p.here()
	r := p.src[p.pos]

	switch {
	case r == '$':
		p.advance(1)
		start := p.pos
		for p.pos < len(p.src) && isNameByte(p.src[p.pos]) {
			p.advance(1)
		}
		return token{kind: tokVariable, text: p.src[start:p.pos], loc: loc}

	case isNameStart(r):
		start := p.pos
		for p.pos < len(p.src) && isNameByte(p.src[p.pos]) {
			p.advance(1)
		}
		return token{kind: tokName, text: p.src[start:p.pos], loc: loc}

	case r == '-' || (r >= '0' && r <= '9'):
		return p.lexNumber(loc)

	case r == '"':
		return p.lexString(loc)

	case strings.ContainsRune("{}()[]:", rune(r)):
		p.advance(1)
		return token{kind: tokPunct, text: string(r), loc: loc}

	case r == '.' && p.pos+2 < len(p.src) && p.src[p.pos+1] == '.' && p.src[p.pos+2] == '.':
		p.advance(3)
		return token{kind: tokPunct, text: "...", loc: loc}

	default:
		p.advance(1)
		return token{kind: tokPunct, text: string(r), loc: loc}
	}
}

func (p *parser) lexNumber(loc Location) token {
	start := p.pos
	if p.src[p.pos] == '-' {
		p.advance(1)
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.advance(1)
	}
	isFloat := false
	if p.pos < len(p.src) && p.src[p.pos] == '.' {
		isFloat = true
		p.advance(1)
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.advance(1)
		}
	}
	if p.pos < len(p.src) && (p.src[p.pos] == 'e' || p.src[p.pos] == 'E') {
		isFloat = true
		p.advance(1)
		if p.pos < len(p.src) && (p.src[p.pos] == '+' || p.src[p.pos] == '-') {
			p.advance(1)
		}
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.advance(1)
		}
	}
	kind := tokInt
	if isFloat {
		kind = tokFloat
	}
	return token{kind: kind, text: p.src[start:p.pos], loc: loc}
}

func (p *parser) lexString(loc Location) token {
	p.advance(1) // opening quote
	var b strings.Builder
	for p.pos < len(p.src) && p.src[p.pos] != '"' {
		c := p.src[p.pos]
		if c == '\\' && p.pos+1 < len(p.src) {
			p.advance(1)
			switch p.src[p.pos] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte(p.src[p.pos])
			}
			p.advance(1)
			continue
		}
		b.WriteByte(c)
		p.advance(1)
	}
	if p.pos < len(p.src) {
		p.advance(1) // closing quote
	}
	return token{kind: tokString, text: b.String(), loc: loc}
}

func (p *parser) advance(n int) {
	p.pos += n
	p.col += n
}

func (p *parser) here() Location {
	return Location{Line: p.line, Column: p.col}
}

func isNameStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNameByte(b byte) bool {
	return isNameStart(b) || (b >= '0' && b <= '9')
}

// toParseError wraps a *ParseErr as the framework's stable error taxonomy
// (KindClientProtocol: malformed request body, akin to a bad HTTP
// framing error rather than a validation failure against the schema).
func toParseError(err error) *errors.Error {
	var pe *ParseErr
	if e, ok := err.(*ParseErr); ok {
		pe = e
	}
	if pe == nil {
		return errors.Wrap(err, errors.KindClientProtocol, "GRAPHQL_PARSE_ERROR", "invalid GraphQL document")
	}
	return errors.Wrap(pe, errors.KindClientProtocol, "GRAPHQL_PARSE_ERROR", pe.Message)
}
