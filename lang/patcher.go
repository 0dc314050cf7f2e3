package lang

import (
	"log/slog"
	"reflect"

	"github.com/expr-lang/expr/ast"

	"github.com/ardnew/aliasexpr/log"
)

// stringFunc is the function concatenation operands are converted with.
const stringFunc = "__string"

var (
	momentType = reflect.TypeFor[Moment]()
	stringType = reflect.TypeFor[string]()
)

// concatPatcher gives + string concatenation semantics when exactly one
// operand is known to be a string. The other operand is converted with
// [stringFunc], so 'n=' + 1 yields "n=1".
//
// A sum is a string when either of its operands is, so in 'a' + 1 + 2 the
// outer 2 is converted as well and the result is "a12".
type concatPatcher struct {
	logger  log.Logger
	patched bool
}

// Visit implements ast.Visitor for concatPatcher.
func (p *concatPatcher) Visit(node *ast.Node) {
	bin, ok := (*node).(*ast.BinaryNode)
	if !ok || bin.Operator != "+" {
		return
	}

	left, right := isString(bin.Left), isString(bin.Right)

	switch {
	case left && !right && !isStringCall(bin.Right):
		p.wrap(&bin.Right)
	case right && !left && !isStringCall(bin.Left):
		p.wrap(&bin.Left)
	}
}

func (p *concatPatcher) wrap(node *ast.Node) {
	ast.Patch(node, &ast.CallNode{
		Callee:    &ast.IdentifierNode{Value: stringFunc},
		Arguments: []ast.Node{*node},
	})

	p.patched = true

	p.logger.Trace("patch concatenation",
		slog.String("operand", (*node).String()))
}

// Reset implements the repeatable patcher contract of expr; it is called
// before every pass.
func (p *concatPatcher) Reset() { p.patched = false }

// ShouldRepeat reports whether the last pass patched anything.
func (p *concatPatcher) ShouldRepeat() bool {
	repeat := p.patched
	p.patched = false

	return repeat
}

// isString reports whether node yields a string: a string-typed node, a
// [stringFunc] call, or a sum with a string operand.
func isString(node ast.Node) bool {
	if node.Type() == stringType || isStringCall(node) {
		return true
	}

	bin, ok := node.(*ast.BinaryNode)

	return ok && bin.Operator == "+" && (isString(bin.Left) || isString(bin.Right))
}

func isStringCall(node ast.Node) bool {
	call, ok := node.(*ast.CallNode)
	if !ok {
		return false
	}

	ident, ok := call.Callee.(*ast.IdentifierNode)

	return ok && ident.Value == stringFunc
}

// momentMethods maps the method names scripts use on Moment values to the
// exported Go methods.
var momentMethods = map[string]string{
	"add":         "Add",
	"subtract":    "Subtract",
	"format":      "Format",
	"locale":      "Locale",
	"startOf":     "StartOf",
	"endOf":       "EndOf",
	"year":        "Year",
	"month":       "Month",
	"date":        "Date",
	"day":         "Day",
	"hour":        "Hour",
	"hours":       "Hour",
	"minute":      "Minute",
	"minutes":     "Minute",
	"second":      "Second",
	"seconds":     "Second",
	"valueOf":     "ValueOf",
	"unix":        "Unix",
	"toISOString": "ToISOString",
	"toString":    "String",
	"isBefore":    "IsBefore",
	"isAfter":     "IsAfter",
	"isSame":      "IsSame",
	"daysInMonth": "DaysInMonth",
	"clone":       "Clone",
}

// optionalLastArg gives the arity of Moment methods whose last argument
// may be omitted in scripts. An omitted argument is passed as "".
var optionalLastArg = map[string]int{
	"Format": 1,
	"IsSame": 2,
}

// stringMethods maps string and array methods to the builtin that
// implements them. The receiver becomes the first argument.
var stringMethods = map[string]string{
	"toUpperCase": "upper",
	"toLowerCase": "lower",
	"trim":        "trim",
	"split":       "split",
	"indexOf":     "indexOf",
	"lastIndexOf": "lastIndexOf",
	"join":        "join",
	"toString":    "string",
	"replaceAll":  "replace",
}

// stringOperators maps string methods to the binary operator that
// implements them.
var stringOperators = map[string]string{
	"includes":   "contains",
	"startsWith": "startsWith",
	"endsWith":   "endsWith",
}

// methodPatcher rewrites method calls and properties to their expr-lang
// form: Moment methods to the exported Go method, s.length to len(s), and
// string methods to the equivalent builtin or operator.
type methodPatcher struct {
	logger  log.Logger
	patched bool
}

// Visit implements ast.Visitor for methodPatcher.
func (p *methodPatcher) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.MemberNode:
		p.visitMember(node, n)
	case *ast.CallNode:
		p.visitCall(node, n)
	}
}

func (p *methodPatcher) visitMember(node *ast.Node, member *ast.MemberNode) {
	prop, ok := member.Property.(*ast.StringNode)
	if !ok {
		return
	}

	recv := member.Node.Type()

	switch {
	case prop.Value == "length" && !member.Method && isSequence(recv):
		p.patch(node, &ast.BuiltinNode{
			Name:      "len",
			Arguments: []ast.Node{member.Node},
		}, prop.Value)

	case recv == momentType || (isUnknown(recv) && !isStringMethod(prop.Value)):
		name, ok := momentMethods[prop.Value]
		if !ok {
			return
		}

		p.patch(&member.Property, &ast.StringNode{Value: name}, prop.Value)
	}
}

func (p *methodPatcher) visitCall(node *ast.Node, call *ast.CallNode) {
	member, ok := call.Callee.(*ast.MemberNode)
	if !ok {
		return
	}

	prop, ok := member.Property.(*ast.StringNode)
	if !ok {
		return
	}

	if arity, ok := optionalLastArg[prop.Value]; ok && len(call.Arguments) == arity-1 {
		call.Arguments = append(call.Arguments, &ast.StringNode{Value: ""})
		p.patched = true

		p.logger.Trace("patch default argument", slog.String("method", prop.Value))

		return
	}

	if !isSequence(member.Node.Type()) {
		return
	}

	args := append([]ast.Node{member.Node}, call.Arguments...)

	if builtin, ok := stringMethods[prop.Value]; ok {
		p.patch(node, &ast.BuiltinNode{Name: builtin, Arguments: args},
			prop.Value)

		return
	}

	if op, ok := stringOperators[prop.Value]; ok && len(call.Arguments) == 1 {
		p.patch(node, &ast.BinaryNode{
			Operator: op,
			Left:     member.Node,
			Right:    call.Arguments[0],
		}, prop.Value)

		return
	}

	switch prop.Value {
	case "substring", "slice":
		slice := &ast.SliceNode{Node: member.Node}
		if len(call.Arguments) > 0 {
			slice.From = call.Arguments[0]
		}

		if len(call.Arguments) > 1 {
			slice.To = call.Arguments[1]
		}

		p.patch(node, slice, prop.Value)
	}
}

func (p *methodPatcher) patch(node *ast.Node, with ast.Node, method string) {
	ast.Patch(node, with)

	p.patched = true

	p.logger.Trace("patch method", slog.String("method", method))
}

// Reset implements the repeatable patcher contract of expr; it is called
// before every pass.
func (p *methodPatcher) Reset() { p.patched = false }

// ShouldRepeat reports whether the last pass patched anything.
func (p *methodPatcher) ShouldRepeat() bool {
	repeat := p.patched
	p.patched = false

	return repeat
}

func isStringMethod(name string) bool {
	_, ok := stringMethods[name]
	if !ok {
		_, ok = stringOperators[name]
	}

	return ok || name == "length" || name == "substring" || name == "slice"
}

// isUnknown reports whether t is not known until run time.
func isUnknown(t reflect.Type) bool {
	return t == nil || t.Kind() == reflect.Interface
}

// isSequence reports whether t may be a string or array at run time.
func isSequence(t reflect.Type) bool {
	if isUnknown(t) {
		return true
	}

	switch t.Kind() {
	case reflect.String, reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}
