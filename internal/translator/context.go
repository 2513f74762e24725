package translator

import (
	"github.com/roach88/sif/internal/ast"
	"github.com/roach88/sif/internal/ir"
)

// Var is a function variable and its prime twin. The twin has the same
// type and is named <name>_p.
type Var struct {
	Name  string
	Type  ir.Type
	Prime *Var
	decl  *ir.LocalVar
}

// Ref returns an IR reference to the variable.
func (v *Var) Ref() *ir.LocalVar { return v.decl }

func newVar(b ir.Builder, name string, typ ir.Type) *Var {
	return &Var{Name: name, Type: typ, decl: b.LocalVar(name, typ, ir.NoPosition, ir.NoInfo)}
}

// newDualVar creates a variable together with its prime twin.
func newDualVar(b ir.Builder, name string, typ ir.Type) *Var {
	v := newVar(b, name, typ)
	v.Prime = newVar(b, name+"_p", typ)
	v.Prime.Prime = v.Prime
	return v
}

type loopLabels struct {
	post string
	end  string
}

// callResult holds the temporaries bound by an emitted method call.
type callResult struct {
	res  *Var
	resP *Var
	tl   *Var
}

// FunctionCtx is the state of one function translation. It is created when
// translation of the function starts and dropped when it ends.
type FunctionCtx struct {
	Func   *ast.Function
	Vars   map[string]*Var
	Params []*Var
	Locals []*Var

	// Result is the result variable, nil for procedures.
	Result *Var

	// TL is the input timelevel and NewTL the ghost timelevel written by
	// the body.
	TL    *Var
	NewTL *Var

	// LoopInvariants is filled by ExtractContracts and consumed once per
	// loop.
	LoopInvariants map[*ast.While][]ast.LoopInvariant

	defined map[string]bool
	loops   []loopLabels
	calls   map[*ast.Call]*callResult
	temps   []*Var
}

// Lookup returns the variable named name.
func (f *FunctionCtx) Lookup(name string) (*Var, bool) {
	v, ok := f.Vars[name]
	return v, ok
}

// EnterLoop registers the labels break and continue jump to.
func (f *FunctionCtx) EnterLoop(post, end string) {
	f.loops = append(f.loops, loopLabels{post: post, end: end})
}

// LeaveLoop pops the innermost loop.
func (f *FunctionCtx) LeaveLoop() {
	f.loops = f.loops[:len(f.loops)-1]
}

func (f *FunctionCtx) innermostLoop() (loopLabels, bool) {
	if len(f.loops) == 0 {
		return loopLabels{}, false
	}
	return f.loops[len(f.loops)-1], true
}

// Defined reports whether name has been assigned (or is a parameter) on
// the statements translated so far.
func (f *FunctionCtx) Defined(name string) bool {
	return f.defined[name]
}

func (f *FunctionCtx) markDefined(name string) {
	f.defined[name] = true
}

// Temps returns the temporaries created for call results, in creation
// order.
func (f *FunctionCtx) Temps() []*Var {
	return f.temps
}

// Context is the translation context threaded through every translate
// call: the function state plus the current mode.
type Context struct {
	Fn *FunctionCtx

	prime     bool
	contract  bool
	currentTL ir.Expr
	aliases   []map[string]ast.Expr
}

// NewContext returns a real-mode context for fn.
func NewContext(fn *FunctionCtx) *Context {
	return &Context{Fn: fn}
}

// IsPrime reports whether translation targets the prime variables.
func (c *Context) IsPrime() bool { return c.prime }

// InContract reports whether a contract is being translated.
func (c *Context) InContract() bool { return c.contract }

// Prime switches to prime mode and returns a func restoring the previous
// mode. Use as `defer ctx.Prime()()`.
func (c *Context) Prime() (restore func()) {
	return c.setPrime(true)
}

// Real switches to real mode and returns a restore func.
func (c *Context) Real() (restore func()) {
	return c.setPrime(false)
}

func (c *Context) setPrime(p bool) func() {
	prev := c.prime
	c.prime = p
	return func() { c.prime = prev }
}

// WithPrime runs fn in prime mode. The previous mode is restored on every
// exit path, panics included.
func (c *Context) WithPrime(fn func() error) error {
	defer c.Prime()()
	return fn()
}

func (c *Context) enterContract() func() {
	prev := c.contract
	c.contract = true
	return func() { c.contract = prev }
}

// CurrentTL returns the timelevel expression statements read: the override
// if one is set, otherwise a reference to _new_tl.
func (c *Context) CurrentTL() ir.Expr {
	if c.currentTL != nil {
		return c.currentTL
	}
	return c.Fn.NewTL.Ref()
}

// SetCurrentTL sets the timelevel override. nil clears it.
func (c *Context) SetCurrentTL(e ir.Expr) {
	c.currentTL = e
}

// WithAliases pushes a name substitution map and returns a func popping it.
func (c *Context) WithAliases(aliases map[string]ast.Expr) (restore func()) {
	if len(aliases) == 0 {
		return func() {}
	}
	n := len(c.aliases)
	c.aliases = append(c.aliases, aliases)
	return func() { c.aliases = c.aliases[:n] }
}

// alias looks name up innermost first. It also returns the depth of the
// map it was found in so the substitute is translated without that map.
func (c *Context) alias(name string) (ast.Expr, int, bool) {
	for i := len(c.aliases) - 1; i >= 0; i-- {
		if e, ok := c.aliases[i][name]; ok {
			return e, i, true
		}
	}
	return nil, 0, false
}

// Var returns the variable for name in the current mode.
func (c *Context) Var(name string) (*Var, bool) {
	v, ok := c.Fn.Lookup(name)
	if !ok {
		return nil, false
	}
	if c.prime {
		return v.Prime, true
	}
	return v, true
}
