// Package resolve implements the two semantic-validation sub-passes that
// run over the parsed AST before TACKY lowering: variable resolution and
// loop/switch labeling. Both rewrite the AST in place, since the tree has
// no back-pointers and each node is owned by exactly one parent.
package resolve

import (
	"github.com/pkg/errors"

	"github.com/polaris/c-compiler/ast"
	"github.com/polaris/c-compiler/internal/fresh"
)

// RedeclarationError reports a second declaration of the same name in the
// same block.
type RedeclarationError struct{ Name string }

func (e *RedeclarationError) Error() string {
	return errors.Errorf("variable %q already declared in this block", e.Name).Error()
}

// UndeclaredVarError reports a reference to a name with no enclosing
// declaration.
type UndeclaredVarError struct{ Name string }

func (e *UndeclaredVarError) Error() string {
	return errors.Errorf("undeclared variable %q", e.Name).Error()
}

// LvalueError reports an assignment target or increment/decrement operand
// that is not a plain variable.
type LvalueError struct{ Context string }

func (e *LvalueError) Error() string {
	return errors.Errorf("invalid lvalue in %s: operand must be a variable", e.Context).Error()
}

// LabelRedefinitionError reports a label defined twice in one function.
type LabelRedefinitionError struct{ Label string }

func (e *LabelRedefinitionError) Error() string {
	return errors.Errorf("label %q already defined in this function", e.Label).Error()
}

// UndefinedLabelError reports a goto whose label is never defined in the
// function.
type UndefinedLabelError struct{ Label string }

func (e *UndefinedLabelError) Error() string {
	return errors.Errorf("goto references undefined label %q", e.Label).Error()
}

// scopeEntry is the value half of the (name -> (uniqueName,
// fromCurrentBlock)) scope map described in spec §4.3 and §9.
type scopeEntry struct {
	UniqueName       string
	FromCurrentBlock bool
}

type scope map[string]scopeEntry

// childScope shallow-copies s and clears fromCurrentBlock on every entry,
// encoding "declared in this block" at the new nesting level.
func childScope(s scope) scope {
	child := make(scope, len(s))
	for name, entry := range s {
		child[name] = scopeEntry{UniqueName: entry.UniqueName, FromCurrentBlock: false}
	}
	return child
}

type labelState struct {
	defined    map[string]bool
	referenced map[string]bool
}

// Program runs both validation sub-passes over prog's functions in order.
func Program(prog *ast.Program, counter *fresh.Counter) error {
	for _, fn := range prog.Functions {
		if err := function(fn, counter); err != nil {
			return err
		}
		if err := labelFunction(fn, counter); err != nil {
			return err
		}
	}
	return nil
}

func function(fn *ast.Function, counter *fresh.Counter) error {
	labels := &labelState{defined: map[string]bool{}, referenced: map[string]bool{}}
	if err := block(fn.Body, scope{}, labels, counter); err != nil {
		return err
	}
	for label := range labels.referenced {
		if !labels.defined[label] {
			return &UndefinedLabelError{Label: label}
		}
	}
	return nil
}

func block(b *ast.Block, s scope, labels *labelState, counter *fresh.Counter) error {
	for _, item := range b.Items {
		switch it := item.(type) {
		case *ast.Declaration:
			if err := declaration(it, s, counter); err != nil {
				return err
			}
		case ast.Statement:
			if err := statement(it, s, labels, counter); err != nil {
				return err
			}
		}
	}
	return nil
}

func declaration(decl *ast.Declaration, s scope, counter *fresh.Counter) error {
	if entry, ok := s[decl.Name]; ok && entry.FromCurrentBlock {
		return &RedeclarationError{Name: decl.Name}
	}
	unique := counter.Name(decl.Name)
	s[decl.Name] = scopeEntry{UniqueName: unique, FromCurrentBlock: true}
	decl.Name = unique
	if decl.Init != nil {
		resolved, err := expr(decl.Init, s)
		if err != nil {
			return err
		}
		decl.Init = resolved
	}
	return nil
}

func statement(stmt ast.Statement, s scope, labels *labelState, counter *fresh.Counter) error {
	switch st := stmt.(type) {
	case *ast.ReturnStmt:
		resolved, err := expr(st.Expr, s)
		if err != nil {
			return err
		}
		st.Expr = resolved

	case *ast.ExprStmt:
		resolved, err := expr(st.Expr, s)
		if err != nil {
			return err
		}
		st.Expr = resolved

	case *ast.IfStmt:
		resolved, err := expr(st.Cond, s)
		if err != nil {
			return err
		}
		st.Cond = resolved
		if err := statement(st.Then, s, labels, counter); err != nil {
			return err
		}
		if st.Else != nil {
			if err := statement(st.Else, s, labels, counter); err != nil {
				return err
			}
		}

	case *ast.GotoStmt:
		labels.referenced[st.Label] = true

	case *ast.LabeledStmt:
		if labels.defined[st.Label] {
			return &LabelRedefinitionError{Label: st.Label}
		}
		labels.defined[st.Label] = true
		if err := statement(st.Stmt, s, labels, counter); err != nil {
			return err
		}

	case *ast.CompoundStmt:
		if err := block(st.Block, childScope(s), labels, counter); err != nil {
			return err
		}

	case *ast.NullStmt:
		// nothing to resolve

	case *ast.BreakStmt, *ast.ContinueStmt:
		// target is assigned by loop/switch labeling

	case *ast.WhileStmt:
		resolved, err := expr(st.Cond, s)
		if err != nil {
			return err
		}
		st.Cond = resolved
		if err := statement(st.Body, s, labels, counter); err != nil {
			return err
		}

	case *ast.DoWhileStmt:
		resolved, err := expr(st.Cond, s)
		if err != nil {
			return err
		}
		st.Cond = resolved
		if err := statement(st.Body, s, labels, counter); err != nil {
			return err
		}

	case *ast.ForStmt:
		loopScope := childScope(s)
		if err := forInit(st.Init, loopScope, counter); err != nil {
			return err
		}
		if st.Cond != nil {
			resolved, err := expr(st.Cond, loopScope)
			if err != nil {
				return err
			}
			st.Cond = resolved
		}
		if st.Post != nil {
			resolved, err := expr(st.Post, loopScope)
			if err != nil {
				return err
			}
			st.Post = resolved
		}
		if err := statement(st.Body, loopScope, labels, counter); err != nil {
			return err
		}

	case *ast.SwitchStmt:
		resolved, err := expr(st.Expr, s)
		if err != nil {
			return err
		}
		st.Expr = resolved
		if err := statement(st.Body, s, labels, counter); err != nil {
			return err
		}

	case *ast.CaseStmt:
		resolved, err := expr(st.Const, s)
		if err != nil {
			return err
		}
		st.Const = resolved
		if err := statement(st.Stmt, s, labels, counter); err != nil {
			return err
		}

	case *ast.DefaultStmt:
		if err := statement(st.Stmt, s, labels, counter); err != nil {
			return err
		}

	default:
		panic(errors.Errorf("resolve: unhandled statement type %T", stmt))
	}
	return nil
}

func forInit(init ast.ForInit, s scope, counter *fresh.Counter) error {
	switch it := init.(type) {
	case *ast.Declaration:
		return declaration(it, s, counter)
	case *ast.ExprInit:
		if it.Expr == nil {
			return nil
		}
		resolved, err := expr(it.Expr, s)
		if err != nil {
			return err
		}
		it.Expr = resolved
		return nil
	default:
		panic(errors.Errorf("resolve: unhandled for-init type %T", init))
	}
}

func expr(e ast.Expr, s scope) (ast.Expr, error) {
	switch ex := e.(type) {
	case *ast.Constant:
		return ex, nil

	case *ast.Var:
		entry, ok := s[ex.Name]
		if !ok {
			return nil, &UndeclaredVarError{Name: ex.Name}
		}
		ex.Name = entry.UniqueName
		return ex, nil

	case *ast.Unary:
		if isIncrementDecrement(ex.Op) {
			if _, ok := ex.Inner.(*ast.Var); !ok {
				return nil, &LvalueError{Context: "increment/decrement"}
			}
		}
		resolved, err := expr(ex.Inner, s)
		if err != nil {
			return nil, err
		}
		ex.Inner = resolved
		return ex, nil

	case *ast.Binary:
		left, err := expr(ex.Left, s)
		if err != nil {
			return nil, err
		}
		right, err := expr(ex.Right, s)
		if err != nil {
			return nil, err
		}
		ex.Left, ex.Right = left, right
		return ex, nil

	case *ast.Assignment:
		if _, ok := ex.Left.(*ast.Var); !ok {
			return nil, &LvalueError{Context: "assignment"}
		}
		left, err := expr(ex.Left, s)
		if err != nil {
			return nil, err
		}
		right, err := expr(ex.Right, s)
		if err != nil {
			return nil, err
		}
		ex.Left, ex.Right = left, right
		return ex, nil

	case *ast.Conditional:
		cond, err := expr(ex.Cond, s)
		if err != nil {
			return nil, err
		}
		then, err := expr(ex.Then, s)
		if err != nil {
			return nil, err
		}
		els, err := expr(ex.Else, s)
		if err != nil {
			return nil, err
		}
		ex.Cond, ex.Then, ex.Else = cond, then, els
		return ex, nil

	default:
		panic(errors.Errorf("resolve: unhandled expression type %T", e))
	}
}

func isIncrementDecrement(op ast.UnaryOp) bool {
	switch op {
	case ast.PreIncrement, ast.PreDecrement, ast.PostIncrement, ast.PostDecrement:
		return true
	}
	return false
}
