package ir

import "fmt"

// EncodeMethod converts a method into the canonical value model.
func EncodeMethod(m *Method) ObjectValue {
	obj := ObjectValue{
		"kind":    StringValue("method"),
		"name":    StringValue(m.Name),
		"args":    encodeDecls(m.Args),
		"returns": encodeDecls(m.Returns),
		"pre":     encodeExprs(m.Pre),
		"post":    encodeExprs(m.Post),
		"locals":  encodeDecls(m.Locals),
		"body":    ArrayValue{},
	}
	if m.Body != nil {
		obj["body"] = encodeStmts(m.Body.Stmts)
	}
	return withMeta(obj, m.Meta)
}

// EncodeFunction converts a pure function into the canonical value model.
func EncodeFunction(f *Function) ObjectValue {
	obj := ObjectValue{
		"kind":   StringValue("function"),
		"name":   StringValue(f.Name),
		"args":   encodeDecls(f.Args),
		"result": StringValue(f.Result),
		"pre":    encodeExprs(f.Pre),
		"post":   encodeExprs(f.Post),
	}
	if f.Body != nil {
		obj["body"] = EncodeExpr(f.Body)
	}
	return withMeta(obj, f.Meta)
}

// EncodeStmt converts a statement into the canonical value model.
// Panics on a node type without an encoding.
func EncodeStmt(s Stmt) ObjectValue {
	var obj ObjectValue
	switch s := s.(type) {
	case *LocalVarAssign:
		obj = ObjectValue{"kind": StringValue("assign"), "target": StringValue(s.Target.Name), "value": EncodeExpr(s.Value)}
	case *MethodCall:
		targets := make(ArrayValue, len(s.Targets))
		for i, t := range s.Targets {
			targets[i] = StringValue(t.Name)
		}
		obj = ObjectValue{"kind": StringValue("call"), "name": StringValue(s.Name), "args": encodeExprs(s.Args), "targets": targets}
	case *Seqn:
		obj = ObjectValue{"kind": StringValue("seqn"), "stmts": encodeStmts(s.Stmts)}
	case *If:
		obj = ObjectValue{"kind": StringValue("if"), "cond": EncodeExpr(s.Cond), "then": encodeBlock(s.Then), "else": encodeBlock(s.Else)}
	case *While:
		obj = ObjectValue{"kind": StringValue("while"), "cond": EncodeExpr(s.Cond), "invariants": encodeExprs(s.Invariants), "body": encodeBlock(s.Body)}
	case *Label:
		obj = ObjectValue{"kind": StringValue("label"), "name": StringValue(s.Name)}
	case *Goto:
		obj = ObjectValue{"kind": StringValue("goto"), "target": StringValue(s.Target)}
	case *Assert:
		obj = ObjectValue{"kind": StringValue("assert"), "expr": EncodeExpr(s.Expr)}
	default:
		panic(fmt.Sprintf("ir: no encoding for statement %T", s))
	}
	return withMeta(obj, s.meta())
}

// EncodeExpr converts an expression into the canonical value model.
// Panics on a node type without an encoding.
func EncodeExpr(e Expr) ObjectValue {
	var obj ObjectValue
	switch e := e.(type) {
	case *LocalVar:
		obj = ObjectValue{"kind": StringValue("var"), "name": StringValue(e.Name)}
	case *IntLit:
		obj = ObjectValue{"kind": StringValue("int"), "value": IntValue(e.Value)}
	case *BoolLit:
		obj = ObjectValue{"kind": StringValue("bool"), "value": BoolValue(e.Value)}
	case *NullLit:
		obj = ObjectValue{"kind": StringValue("null")}
	case *BinExpr:
		obj = ObjectValue{"kind": StringValue("binop"), "op": StringValue(e.Op), "left": EncodeExpr(e.Left), "right": EncodeExpr(e.Right)}
	case *Not:
		obj = ObjectValue{"kind": StringValue("not"), "x": EncodeExpr(e.X)}
	case *Neg:
		obj = ObjectValue{"kind": StringValue("neg"), "x": EncodeExpr(e.X)}
	case *FuncApp:
		obj = ObjectValue{"kind": StringValue("funcapp"), "name": StringValue(e.Name), "args": encodeExprs(e.Args)}
	case *SeqIndex:
		obj = ObjectValue{"kind": StringValue("index"), "seq": EncodeExpr(e.Seq), "idx": EncodeExpr(e.Idx)}
	case *SetLit:
		obj = ObjectValue{"kind": StringValue("set"), "elems": encodeExprs(e.Elems)}
	case *Length:
		obj = ObjectValue{"kind": StringValue("length"), "x": EncodeExpr(e.X)}
	case *Old:
		obj = ObjectValue{"kind": StringValue("old"), "x": EncodeExpr(e.X)}
	case *TypeCheck:
		obj = ObjectValue{"kind": StringValue("typecheck"), "x": EncodeExpr(e.X), "want": StringValue(e.Want)}
	default:
		panic(fmt.Sprintf("ir: no encoding for expression %T", e))
	}
	obj["type"] = StringValue(e.Type())
	return withMeta(obj, e.meta())
}

func withMeta(obj ObjectValue, m Meta) ObjectValue {
	if m.Pos.IsValid() {
		obj["pos"] = StringValue(m.Pos.String())
	}
	if m.Info != NoInfo {
		obj["info"] = StringValue(m.Info)
	}
	return obj
}

func encodeDecls(vars []*LocalVar) ArrayValue {
	arr := make(ArrayValue, len(vars))
	for i, v := range vars {
		arr[i] = ObjectValue{"name": StringValue(v.Name), "type": StringValue(v.Typ)}
	}
	return arr
}

func encodeExprs(es []Expr) ArrayValue {
	arr := make(ArrayValue, len(es))
	for i, e := range es {
		arr[i] = EncodeExpr(e)
	}
	return arr
}

func encodeStmts(stmts []Stmt) ArrayValue {
	arr := make(ArrayValue, len(stmts))
	for i, s := range stmts {
		arr[i] = EncodeStmt(s)
	}
	return arr
}

func encodeBlock(s *Seqn) ArrayValue {
	if s == nil {
		return ArrayValue{}
	}
	return encodeStmts(s.Stmts)
}
