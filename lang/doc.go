// Package lang evaluates alias expressions: small JavaScript-like function
// bodies that compute a display name from named query variables.
//
// Query variables are referenced with dollar delimiters, e.g. $province$.
// [References] lists the names an expression refers to, and [Evaluator]
// binds a value for each name and runs the body to a string result.
//
// # Grammar
//
// Informal EBNF:
//
//	Body        → Statement* EOF
//	Statement   → Declaration | Assignment | Return | Throw | Expression
//	Declaration → ('var' | 'let' | 'const') Identifier ('=' Expression)?
//	Assignment  → Identifier ('=' | '+=') Expression
//	Return      → 'return' Expression?
//	Throw       → 'throw' Expression
//	Expression  → <balanced text, ends at ';' or a newline at depth 0>
//
// A newline does not end a statement when the line ends with an operator or
// an open bracket, or when the next line starts with a member access or a
// continuing operator. Comments use // and /* */.
//
// Expressions are compiled and run by expr-lang. Common JavaScript spellings
// are normalized first (=== and !== become == and !=, null and undefined
// become nil, s.length becomes len(s), and so on), and + with exactly one
// string operand converts the other operand to a string.
//
// # Example
//
//	var province = $province$
//	var currentYearMonth = Moment().format('YYYY年MM月')
//	var alias = province + '(' + currentYearMonth + ')'
//	return alias
//
// # Variables
//
// Every $name$ must have a value before anything runs; all absent names are
// reported together in a [MissingVariableError]. Values are bound into the
// evaluation environment as strings, never spliced into the source text, so a
// value containing quotes or backslashes cannot change the program. Inside a
// string literal a reference splits the literal into a concatenation.
//
// # Dates
//
// Moment is the only clock access. Moment() is the current time, Moment(s)
// parses free-form date text, Moment(s, pattern) parses with a format
// pattern, and Moment(ms) converts epoch milliseconds. Values are immutable
// and support add, subtract, startOf, endOf, format, locale and a handful of
// accessors.
//
// # Errors
//
// Everything other than a missing variable is reported as an
// [EvaluationError], including parse errors, expr-lang compile and runtime
// errors, non-string results and panics.
package lang
