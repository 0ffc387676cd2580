// Package lang implements the dopa scripting language: a lexer, a parser
// producing an immutable syntax tree, and a tree-walking interpreter that
// hosts may extend with native functions.
//
// # Pipeline
//
//	source ─Tokenize→ []Token ─Analyse→ *Program ─Interpreter.Execute→ Value
//
// [Compile] runs the first two stages and caches the result by source hash.
//
// # Language
//
// Statements end with ';' and blocks are braced:
//
//	var total, count = 0;
//
//	function fib(n) {
//	  var a = 0;
//	  var b = 1;
//	  for (var i = 0; i < n; i++) {
//	    var t = a + b;
//	    a = b;
//	    b = t;
//	  }
//	  return a;
//	}
//
//	if (fib(7) == 13) { print("ok"); } else { print("broken"); }
//
// Loops are while, do-while and for, with break and continue. Paths address
// array elements and structure or map members: a[0], s.name, m["key"].
// Parameters declared ref alias the caller's variable.
//
// # Values
//
// A [Value] is undefined, a string, an exact decimal number, a boolean, a
// datetime, a timespan, an array, a structure or a map. Scalars are copied on
// assignment; arrays, structures and maps are shared.
//
// Binary operators group as in arithmetic: * / % bind tightest, then + -,
// then comparisons, then && and ||. Chains of one group evaluate left to
// right, and the right operand of && or || is skipped when the left already
// decides the result.
//
// # Errors
//
// Every failure is an [*Error] with a stable [Code] and a 1-based source
// position:
//
//	10000  lexing
//	20000  syntax
//	30000  execution
//	30001  assignment to an undeclared variable
//	30002  call of an unknown function
//	30003  read of an undeclared variable
//
// Use [errors.Is] with the sentinels ([ErrSyntax], [ErrFunctionNotFound], ...)
// to test for a code.
package lang
