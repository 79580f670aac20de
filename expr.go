package armature

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Expr is a parsed amount expression over property names.
type Expr interface {
	// Eval computes the value. It reports false when a referenced property
	// does not exist.
	Eval(ps *Properties) (float64, bool)
	String() string
}

// ExprError describes a syntax error in an amount expression.
type ExprError struct {
	Expr string
	Pos  int
	Msg  string
}

func (e *ExprError) Error() string {
	return fmt.Sprintf("expression %q: %s at offset %d", e.Expr, e.Msg, e.Pos)
}

type numberExpr float64

func (n numberExpr) Eval(*Properties) (float64, bool) { return float64(n), true }
func (n numberExpr) String() string                   { return strconv.FormatFloat(float64(n), 'g', -1, 64) }

type propertyExpr string

func (p propertyExpr) Eval(ps *Properties) (float64, bool) {
	if ps == nil {
		return 0, false
	}
	prop, ok := ps.Lookup(string(p))
	if !ok {
		return 0, false
	}
	return prop.Value, true
}
func (p propertyExpr) String() string { return string(p) }

type negateExpr struct{ x Expr }

func (n negateExpr) Eval(ps *Properties) (float64, bool) {
	v, ok := n.x.Eval(ps)
	return -v, ok
}
func (n negateExpr) String() string { return "-" + n.x.String() }

type binaryExpr struct {
	op   byte
	l, r Expr
}

func (b binaryExpr) Eval(ps *Properties) (float64, bool) {
	l, ok := b.l.Eval(ps)
	if !ok {
		return 0, false
	}
	r, ok := b.r.Eval(ps)
	if !ok {
		return 0, false
	}
	switch b.op {
	case '+':
		return l + r, true
	case '-':
		return l - r, true
	case '*':
		return l * r, true
	case '/':
		return l / r, true
	case '^':
		return math.Pow(l, r), true
	}
	return 0, false
}

func (b binaryExpr) String() string {
	return "(" + b.l.String() + " " + string(b.op) + " " + b.r.String() + ")"
}

type exprFunc struct {
	arity int
	fn    func(args []float64) float64
}

var exprFuncs = map[string]exprFunc{
	"abs":   {1, func(a []float64) float64 { return math.Abs(a[0]) }},
	"sqrt":  {1, func(a []float64) float64 { return math.Sqrt(a[0]) }},
	"sin":   {1, func(a []float64) float64 { return math.Sin(a[0]) }},
	"cos":   {1, func(a []float64) float64 { return math.Cos(a[0]) }},
	"min":   {2, func(a []float64) float64 { return math.Min(a[0], a[1]) }},
	"max":   {2, func(a []float64) float64 { return math.Max(a[0], a[1]) }},
	"clamp": {3, func(a []float64) float64 { return math.Min(math.Max(a[0], a[1]), a[2]) }},
	"lerp":  {3, func(a []float64) float64 { return lerp(a[0], a[1], a[2]) }},
}

type callExpr struct {
	name string
	args []Expr
}

func (c callExpr) Eval(ps *Properties) (float64, bool) {
	vals := make([]float64, len(c.args))
	for i, a := range c.args {
		v, ok := a.Eval(ps)
		if !ok {
			return 0, false
		}
		vals[i] = v
	}
	return exprFuncs[c.name].fn(vals), true
}

func (c callExpr) String() string {
	parts := make([]string, len(c.args))
	for i, a := range c.args {
		parts[i] = a.String()
	}
	return c.name + "(" + strings.Join(parts, ", ") + ")"
}

// ParseExpr parses an arithmetic expression made of numbers, property
// names, unary minus, + - * / ^, parentheses, and the functions abs, sqrt,
// sin, cos, min, max, clamp, and lerp.
func ParseExpr(src string) (Expr, error) {
	p := &exprParser{src: src}
	p.next()
	e, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.tok != tokEOF {
		return nil, p.errorf("unexpected %q", p.text)
	}
	return e, nil
}

type exprToken uint8

const (
	tokEOF exprToken = iota
	tokNumber
	tokIdent
	tokOp
	tokErr
)

type exprParser struct {
	src  string
	off  int
	pos  int // start of the current token
	tok  exprToken
	text string
}

func (p *exprParser) errorf(format string, args ...any) error {
	return &ExprError{Expr: p.src, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *exprParser) next() {
	for p.off < len(p.src) && (p.src[p.off] == ' ' || p.src[p.off] == '\t') {
		p.off++
	}
	p.pos = p.off
	if p.off >= len(p.src) {
		p.tok, p.text = tokEOF, ""
		return
	}
	c := p.src[p.off]
	switch {
	case isDigit(c) || c == '.':
		end := p.off
		for end < len(p.src) && (isDigit(p.src[end]) || p.src[end] == '.') {
			end++
		}
		if end < len(p.src) && (p.src[end] == 'e' || p.src[end] == 'E') {
			exp := end + 1
			if exp < len(p.src) && (p.src[exp] == '+' || p.src[exp] == '-') {
				exp++
			}
			if exp < len(p.src) && isDigit(p.src[exp]) {
				for end = exp; end < len(p.src) && isDigit(p.src[end]); end++ {
				}
			}
		}
		p.tok, p.text = tokNumber, p.src[p.off:end]
		p.off = end
	case isIdentStart(c):
		end := p.off
		for end < len(p.src) && (isIdentStart(p.src[end]) || isDigit(p.src[end])) {
			end++
		}
		p.tok, p.text = tokIdent, p.src[p.off:end]
		p.off = end
	case strings.IndexByte("+-*/^(),", c) >= 0:
		p.tok, p.text = tokOp, string(c)
		p.off++
	default:
		p.tok, p.text = tokErr, string(c)
		p.off++
	}
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func (p *exprParser) isOp(op string) bool { return p.tok == tokOp && p.text == op }

func (p *exprParser) parseSum() (Expr, error) {
	l, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.text[0]
		p.next()
		r, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		l = binaryExpr{op: op, l: l, r: r}
	}
	return l, nil
}

func (p *exprParser) parseProduct() (Expr, error) {
	l, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*") || p.isOp("/") {
		op := p.text[0]
		p.next()
		r, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		l = binaryExpr{op: op, l: l, r: r}
	}
	return l, nil
}

func (p *exprParser) parseUnary() (Expr, error) {
	switch {
	case p.isOp("-"):
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return negateExpr{x}, nil
	case p.isOp("+"):
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

// parsePower binds ^ tighter than unary minus on its left and right-associatively.
func (p *exprParser) parsePower() (Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if !p.isOp("^") {
		return base, nil
	}
	p.next()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return binaryExpr{op: '^', l: base, r: exp}, nil
}

func (p *exprParser) parsePrimary() (Expr, error) {
	switch p.tok {
	case tokNumber:
		v, err := strconv.ParseFloat(p.text, 64)
		if err != nil {
			return nil, p.errorf("malformed number %q", p.text)
		}
		p.next()
		return numberExpr(v), nil
	case tokIdent:
		name := p.text
		p.next()
		if !p.isOp("(") {
			return propertyExpr(name), nil
		}
		return p.parseCall(name)
	case tokOp:
		if p.text == "(" {
			p.next()
			e, err := p.parseSum()
			if err != nil {
				return nil, err
			}
			if !p.isOp(")") {
				return nil, p.errorf("expected )")
			}
			p.next()
			return e, nil
		}
		return nil, p.errorf("unexpected %q", p.text)
	case tokEOF:
		return nil, p.errorf("unexpected end of expression")
	}
	return nil, p.errorf("invalid character %q", p.text)
}

func (p *exprParser) parseCall(name string) (Expr, error) {
	fn, ok := exprFuncs[name]
	if !ok {
		return nil, p.errorf("unknown function %q", name)
	}
	p.next() // (
	var args []Expr
	if !p.isOp(")") {
		for {
			a, err := p.parseSum()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if !p.isOp(",") {
				break
			}
			p.next()
		}
	}
	if !p.isOp(")") {
		return nil, p.errorf("expected ) after arguments to %s", name)
	}
	p.next()
	if len(args) != fn.arity {
		return nil, p.errorf("%s takes %d arguments, got %d", name, fn.arity, len(args))
	}
	return callExpr{name: name, args: args}, nil
}

// Amount is a scalar node parameter: either a literal or an expression over
// property names. The zero value evaluates to 0.
type Amount struct {
	src  string
	expr Expr
}

// LiteralAmount returns an amount with a constant value.
func LiteralAmount(v float64) Amount {
	n := numberExpr(v)
	return Amount{src: n.String(), expr: n}
}

// ParseAmount parses src as an amount expression.
func ParseAmount(src string) (Amount, error) {
	e, err := ParseExpr(src)
	if err != nil {
		return Amount{}, err
	}
	return Amount{src: src, expr: e}, nil
}

// MustParseAmount is ParseAmount that panics on error. Intended for
// literals in code.
func MustParseAmount(src string) Amount {
	a, err := ParseAmount(src)
	if err != nil {
		panic(err)
	}
	return a
}

// Eval computes the amount. Unknown properties and non-finite results make
// the whole amount evaluate to 0.
func (a Amount) Eval(ps *Properties) float64 {
	if a.expr == nil {
		return 0
	}
	v, ok := a.expr.Eval(ps)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// String returns the source text of the amount.
func (a Amount) String() string { return a.src }
