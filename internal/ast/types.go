package ast

import "strings"

// Type is a source type name: "int", "bool", "object", "list[int]",
// "PSet[int]", "PSet[object]". Bare "list" and "PSet" default to int
// elements.
type Type string

// Source type names.
const (
	TypeInt    Type = "int"
	TypeBool   Type = "bool"
	TypeObject Type = "object"
	TypeNone   Type = ""
)

// IsList reports whether t is a list type.
func (t Type) IsList() bool {
	return t == "list" || strings.HasPrefix(string(t), "list[")
}

// IsPSet reports whether t is a PSet type.
func (t Type) IsPSet() bool {
	return t == "PSet" || strings.HasPrefix(string(t), "PSet[")
}

// Elem returns the element type of a list or PSet type, or TypeNone.
func (t Type) Elem() Type {
	s := string(t)
	open := strings.IndexByte(s, '[')
	if open < 0 {
		if t.IsList() || t.IsPSet() {
			return TypeInt
		}
		return TypeNone
	}
	if !strings.HasSuffix(s, "]") {
		return TypeNone
	}
	return Type(s[open+1 : len(s)-1])
}

// Valid reports whether t is a type the translator knows.
func (t Type) Valid() bool {
	switch t {
	case TypeInt, TypeBool, TypeObject:
		return true
	}
	if t.IsList() || t.IsPSet() {
		switch t.Elem() {
		case TypeInt, TypeBool, TypeObject:
			return true
		}
	}
	return false
}

// Param is a typed parameter or local declaration.
type Param struct {
	Name string
	Type Type
}

// Function is a source function declaration.
//
// Pure functions must have an empty body (abstract) or a body that is a
// single return statement. Result is TypeNone for procedures.
type Function struct {
	Pos
	Name     string
	Pure     bool
	Params   []Param
	Locals   []Param
	Result   Type
	Requires []Expr
	Ensures  []Expr
	Body     []Stmt
}

// Program is an ordered list of functions.
type Program struct {
	Functions []*Function
}

// Lookup returns the function named name, or nil.
func (p *Program) Lookup(name string) *Function {
	for _, fn := range p.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// VarType returns the declared type of a parameter or local of fn.
func (fn *Function) VarType(name string) (Type, bool) {
	for _, p := range fn.Params {
		if p.Name == name {
			return p.Type, true
		}
	}
	for _, l := range fn.Locals {
		if l.Name == name {
			return l.Type, true
		}
	}
	return TypeNone, false
}
