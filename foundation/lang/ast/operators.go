// File: operators.go
// Title: Operator Kinds
// Description: Binary and unary operator kinds with their source symbols
//              and parsing precedence.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial operator model

package ast

import (
	"fmt"

	"github.com/msto63/frege/foundation/lang/token"
)

// BinaryKind identifies a binary operator
type BinaryKind int

const (
	Plus BinaryKind = iota
	Minus
	Multiply
	Divide
	BitwiseOr
	BitwiseAnd
	BitwiseXor
	Equal
	NotEqual
	LogicalAnd
	LogicalOr
	Less
	LessEqual
	Greater
	GreaterEqual
)

type binaryInfo struct {
	name       string
	symbol     string
	precedence int
	token      token.Kind
}

var binaryTable = [...]binaryInfo{
	LogicalOr:    {"LogicalOr", "||", 1, token.PipePipe},
	LogicalAnd:   {"LogicalAnd", "&&", 1, token.AmpersandAmpersand},
	Equal:        {"Equal", "==", 2, token.EqualEqual},
	NotEqual:     {"NotEqual", "!=", 2, token.BangEqual},
	Less:         {"Less", "<", 2, token.Less},
	LessEqual:    {"LessEqual", "<=", 2, token.LessEqual},
	Greater:      {"Greater", ">", 2, token.Greater},
	GreaterEqual: {"GreaterEqual", ">=", 2, token.GreaterEqual},
	BitwiseOr:    {"BitwiseOr", "|", 3, token.Pipe},
	BitwiseXor:   {"BitwiseXor", "^", 3, token.Caret},
	BitwiseAnd:   {"BitwiseAnd", "&", 3, token.Ampersand},
	Plus:         {"Plus", "+", 4, token.Plus},
	Minus:        {"Minus", "-", 4, token.Minus},
	Multiply:     {"Multiply", "*", 5, token.Asterisk},
	Divide:       {"Divide", "/", 5, token.Slash},
}

var binaryByToken = func() map[token.Kind]BinaryKind {
	m := make(map[token.Kind]BinaryKind, len(binaryTable))
	for k, info := range binaryTable {
		m[info.token] = BinaryKind(k)
	}
	return m
}()

// BinaryKindOf returns the binary operator spelled by a token kind
func BinaryKindOf(k token.Kind) (BinaryKind, bool) {
	op, ok := binaryByToken[k]
	return op, ok
}

func (k BinaryKind) valid() bool {
	return k >= 0 && int(k) < len(binaryTable)
}

// String returns the operator name
func (k BinaryKind) String() string {
	if !k.valid() {
		return fmt.Sprintf("BinaryKind(%d)", int(k))
	}
	return binaryTable[k].name
}

// Symbol returns the source spelling
func (k BinaryKind) Symbol() string {
	if !k.valid() {
		return "?"
	}
	return binaryTable[k].symbol
}

// Precedence returns the binding strength, 1 (weakest) to 5
func (k BinaryKind) Precedence() int {
	if !k.valid() {
		return 0
	}
	return binaryTable[k].precedence
}

// UnaryKind identifies a prefix operator
type UnaryKind int

const (
	Negate UnaryKind = iota
	LogicalNot
	BitwiseNot
)

// UnaryKindOf returns the prefix operator spelled by a token kind
func UnaryKindOf(k token.Kind) (UnaryKind, bool) {
	switch k {
	case token.Minus:
		return Negate, true
	case token.Bang:
		return LogicalNot, true
	case token.Tilde:
		return BitwiseNot, true
	}
	return 0, false
}

// String returns the operator name
func (k UnaryKind) String() string {
	switch k {
	case Negate:
		return "Negate"
	case LogicalNot:
		return "LogicalNot"
	case BitwiseNot:
		return "BitwiseNot"
	}
	return fmt.Sprintf("UnaryKind(%d)", int(k))
}

// Symbol returns the source spelling
func (k UnaryKind) Symbol() string {
	switch k {
	case Negate:
		return "-"
	case LogicalNot:
		return "!"
	case BitwiseNot:
		return "~"
	}
	return "?"
}

// BinaryOperator is an operator kind together with its source token
type BinaryOperator struct {
	Kind  BinaryKind
	Token token.Token
}

// Precedence of the operator kind
func (o BinaryOperator) Precedence() int {
	return o.Kind.Precedence()
}

// UnaryOperator is a prefix operator kind together with its source token
type UnaryOperator struct {
	Kind  UnaryKind
	Token token.Token
}
