package hdl

import (
	"fmt"
	"os"
	"strings"

	"github.com/jihwankim/time-expansion/pkg/netlist"
)

// Parser is a recursive-descent reader over a token stream, producing a
// netlist.Netlist. Use Parse/ParseFile for the common case; NewParser is
// exposed for callers that already tokenized (tests, tooling).
type Parser struct {
	toks []Token
	pos  int
	src  []rune
}

func NewParser(toks []Token, src []rune) *Parser {
	return &Parser{toks: toks, src: src}
}

// ParseFile reads path and parses it as a netlist, stripping `//` comments
// as part of tokenization.
func ParseFile(path string) (*netlist.Netlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read netlist file: %w", err)
	}
	return Parse(string(data))
}

// Parse tokenizes and parses source text into a netlist.
func Parse(source string) (*netlist.Netlist, error) {
	lx := NewLexer(source)
	toks, err := lx.Tokenize()
	if err != nil {
		return nil, err
	}
	p := NewParser(toks, lx.Source())
	return p.parseNetlist()
}

func (p *Parser) cur() Token { return p.toks[p.pos] }

func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) atEOF() bool { return p.cur().Kind == EOF }

func (p *Parser) peekIsReserved(text string) bool {
	t := p.cur()
	return t.Kind == Reserved && t.Text == text
}

func (p *Parser) expectReserved(text string) (Token, error) {
	t := p.cur()
	if t.Kind == EOF {
		return Token{}, &ParseError{Kind: UnexpectedEOF, Line: t.Line, Expected: "'" + text + "'"}
	}
	if t.Kind != Reserved || t.Text != text {
		return Token{}, &ParseError{Kind: UnexpectedToken, Line: t.Line, Expected: "'" + text + "'", Got: t.Text}
	}
	return p.advance(), nil
}

func (p *Parser) expectIdentifier() (Token, error) {
	t := p.cur()
	if t.Kind == EOF {
		return Token{}, &ParseError{Kind: UnexpectedEOF, Line: t.Line, Expected: "identifier"}
	}
	if t.Kind != Identifier {
		return Token{}, &ParseError{Kind: UnexpectedToken, Line: t.Line, Expected: "identifier", Got: t.Text}
	}
	return p.advance(), nil
}

func (p *Parser) expectNumber() (Token, error) {
	t := p.cur()
	if t.Kind == EOF {
		return Token{}, &ParseError{Kind: UnexpectedEOF, Line: t.Line, Expected: "number"}
	}
	if t.Kind != Number {
		return Token{}, &ParseError{Kind: UnexpectedToken, Line: t.Line, Expected: "number", Got: t.Text}
	}
	return p.advance(), nil
}

func (p *Parser) parseNetlist() (*netlist.Netlist, error) {
	nl := netlist.NewNetlist()
	for !p.atEOF() {
		m, err := p.parseModule()
		if err != nil {
			return nil, err
		}
		nl.PushModule(m)
	}
	return nl, nil
}

func (p *Parser) parseModule() (*netlist.Module, error) {
	if _, err := p.expectReserved("module"); err != nil {
		return nil, err
	}
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	m := netlist.NewModule(nameTok.Text)

	if _, err := p.expectReserved("("); err != nil {
		return nil, err
	}
	for !p.peekIsReserved(")") {
		if _, err := p.expectIdentifier(); err != nil {
			return nil, err
		}
		if p.peekIsReserved(",") {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectReserved(")"); err != nil {
		return nil, err
	}
	if _, err := p.expectReserved(";"); err != nil {
		return nil, err
	}

	for !p.peekIsReserved("endmodule") {
		if p.atEOF() {
			return nil, &ParseError{Kind: UnexpectedEOF, Line: p.cur().Line, Expected: "'endmodule'"}
		}
		if err := p.parseModuleItem(m); err != nil {
			return nil, err
		}
	}
	p.advance() // endmodule
	return m, nil
}

func (p *Parser) parseModuleItem(m *netlist.Module) error {
	t := p.cur()
	switch {
	case t.Kind == Reserved && t.Text == "input":
		return p.parseIODecl(m, true)
	case t.Kind == Reserved && t.Text == "output":
		return p.parseIODecl(m, false)
	case t.Kind == Reserved && t.Text == "wire":
		return p.parseWireDecl(m)
	case t.Kind == Reserved && t.Text == "assign":
		return p.parseAssign(m)
	case t.Kind == Identifier:
		return p.parseGateInstance(m)
	default:
		return &ParseError{Kind: UnexpectedToken, Line: t.Line, Expected: "a module item", Got: t.Text}
	}
}

// parseRange parses an optional "[msb:lsb]" prefix; a missing prefix means
// every following signal is scalar.
func (p *Parser) parseRange() (netlist.Range, error) {
	if !p.peekIsReserved("[") {
		return netlist.SingleRange(), nil
	}
	p.advance()
	msb, err := p.expectNumber()
	if err != nil {
		return netlist.Range{}, err
	}
	if _, err := p.expectReserved(":"); err != nil {
		return netlist.Range{}, err
	}
	lsb, err := p.expectNumber()
	if err != nil {
		return netlist.Range{}, err
	}
	if _, err := p.expectReserved("]"); err != nil {
		return netlist.Range{}, err
	}
	return netlist.Range{Kind: netlist.Multiple, MSB: msb.Text, LSB: lsb.Text}, nil
}

func (p *Parser) parseIdentList() ([]Token, error) {
	var names []Token
	for {
		name, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if p.peekIsReserved(",") {
			p.advance()
			continue
		}
		break
	}
	return names, nil
}

func (p *Parser) parseIODecl(m *netlist.Module, isInput bool) error {
	p.advance() // 'input' / 'output'
	rng, err := p.parseRange()
	if err != nil {
		return err
	}
	names, err := p.parseIdentList()
	if err != nil {
		return err
	}
	if _, err := p.expectReserved(";"); err != nil {
		return err
	}
	for _, n := range names {
		w := netlist.Wire{Name: n.Text, Range: rng}
		if isInput {
			m.AddInput(w)
		} else {
			m.AddOutput(w)
		}
	}
	return nil
}

func (p *Parser) parseWireDecl(m *netlist.Module) error {
	p.advance() // 'wire'
	rng, err := p.parseRange()
	if err != nil {
		return err
	}
	names, err := p.parseIdentList()
	if err != nil {
		return err
	}
	if _, err := p.expectReserved(";"); err != nil {
		return err
	}
	for _, n := range names {
		m.AddWire(netlist.Wire{Name: n.Text, Range: rng})
	}
	return nil
}

// consumeBalancedUntil advances past tokens until it sees terminator at
// paren/brace depth 0 (depth starts at startDepth), returning the raw
// source text spanned (trimmed and whitespace-squeezed). It does not
// consume the terminator token itself.
func (p *Parser) consumeBalancedUntil(terminator string, startDepth int) (string, error) {
	start := p.cur()
	if start.Kind == EOF {
		return "", &ParseError{Kind: UnexpectedEOF, Line: start.Line, Expected: "'" + terminator + "'"}
	}
	depth := startDepth
	lastEnd := start.Start
	for {
		t := p.cur()
		if t.Kind == EOF {
			return "", &ParseError{Kind: UnexpectedEOF, Line: t.Line, Expected: "'" + terminator + "'"}
		}
		if depth == 0 && t.Kind == Reserved && t.Text == terminator {
			break
		}
		if t.Kind == Reserved && (t.Text == "(" || t.Text == "{") {
			depth++
		}
		if t.Kind == Reserved && (t.Text == ")" || t.Text == "}") {
			depth--
			if depth == 0 && terminator != ";" {
				break
			}
		}
		lastEnd = t.End
		p.advance()
	}
	return squeeze(string(p.src[start.Start:lastEnd])), nil
}

func (p *Parser) parseAssign(m *netlist.Module) error {
	p.advance() // 'assign'
	lhs, err := p.expectIdentifier()
	if err != nil {
		return err
	}
	if _, err := p.expectReserved("="); err != nil {
		return err
	}
	rhs, err := p.consumeBalancedUntil(";", 0)
	if err != nil {
		return err
	}
	if _, err := p.expectReserved(";"); err != nil {
		return err
	}
	m.AddAssign(lhs.Text, rhs)
	return nil
}

func (p *Parser) parseGateInstance(m *netlist.Module) error {
	cell, err := p.expectIdentifier()
	if err != nil {
		return err
	}
	inst, err := p.expectIdentifier()
	if err != nil {
		return err
	}
	if _, err := p.expectReserved("("); err != nil {
		return err
	}
	g := netlist.GateInstance{Cell: cell.Text}
	for !p.peekIsReserved(")") {
		if _, err := p.expectReserved("."); err != nil {
			return err
		}
		port, err := p.expectIdentifier()
		if err != nil {
			return err
		}
		if _, err := p.expectReserved("("); err != nil {
			return err
		}
		expr, err := p.consumeBalancedUntil(")", 1)
		if err != nil {
			return err
		}
		if _, err := p.expectReserved(")"); err != nil {
			return err
		}
		g.Bindings = append(g.Bindings, classifyBinding(port.Text, expr))
		if p.peekIsReserved(",") {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectReserved(")"); err != nil {
		return err
	}
	if _, err := p.expectReserved(";"); err != nil {
		return err
	}
	m.PushGate(inst.Text, g)
	return nil
}

func classifyBinding(port, expr string) netlist.PortBinding {
	if expr != "" && (isDigit(rune(expr[0])) || strings.HasPrefix(expr, "{")) {
		return netlist.ConstantBinding(port, expr)
	}
	return netlist.WireBinding(port, expr)
}

func squeeze(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
