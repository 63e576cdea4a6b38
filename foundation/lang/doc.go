// File: doc.go
// Title: Language Front End
// Description: Package lang is the entry point for evaluating source text.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial package documentation

/*
Package lang evaluates units of a small expression language.

The language has integer and float literals, variables bound with let,
assignment, arithmetic, bitwise, comparison and logical operators,
functions, if/else and blocks:

	func fact(n) {
		if (n <= 1) return 1;
		return n * fact(n - 1);
	}
	let x = fact(5);
	x / 4

The pipeline lives in sub-packages:

  - token and lexer turn text into tokens
  - parser builds an ast.Program and reports into a diagnostics.Collection
  - checker adds name-resolution warnings
  - solver evaluates the tree against a scope stack and a function table

An Engine wires these together and keeps one session:

	eng := lang.New(lang.Options{})
	res, err := eng.Run(ctx, "let a = 2; a * 21")
	if err != nil {
		// syntax errors (SYNTAX), faults such as UNDEFINED_VARIABLE
	}
	fmt.Println(res.Value) // 42

Every value is a float64. Comparison and logical operators produce 1 or 0,
bitwise operators truncate toward zero and division follows IEEE 754.
*/
package lang
