// Package condition evaluates the boolean expressions attached to condition nodes.
//
// The language is deliberately narrow: integer, string and boolean literals,
// comparison operators, and/or/not, and a fixed set of identifiers. No
// builtin functions are available and the only binding that varies between
// evaluations is prev_message_id.
package condition

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// PrevMessageID is the name under which the predecessor node id is exposed.
const PrevMessageID = "prev_message_id"

// Scope is the evaluation context of a single condition node.
type Scope struct {
	PrevMessageID int64
}

// env is the typed environment expressions are checked against. True and
// False are accepted alongside true and false.
type env struct {
	PrevMessageID int64 `expr:"prev_message_id"`
	True          bool  `expr:"True"`
	False         bool  `expr:"False"`
}

func (s Scope) env() env {
	return env{PrevMessageID: s.PrevMessageID, True: true, False: false}
}

// Engine compiles and evaluates condition expressions.
// Compiled programs are cached and safe to share between goroutines.
type Engine struct {
	mu    sync.RWMutex
	cache map[string]*vm.Program
}

// NewEngine creates an Engine with an empty program cache.
func NewEngine() *Engine {
	return &Engine{cache: make(map[string]*vm.Program)}
}

// Check compiles expression without evaluating it. It reports unknown
// identifiers, syntax errors and non-boolean results.
func (e *Engine) Check(expression string) error {
	_, err := e.program(expression)
	return err
}

// Evaluate runs expression against scope and returns its boolean outcome.
func (e *Engine) Evaluate(expression string, scope Scope) (bool, error) {
	prg, err := e.program(expression)
	if err != nil {
		return false, err
	}

	out, err := expr.Run(prg, scope.env())
	if err != nil {
		return false, fmt.Errorf("condition: evaluate %q: %w", expression, err)
	}

	result, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("condition: %q returned %T, want bool", expression, out)
	}
	return result, nil
}

func (e *Engine) program(expression string) (*vm.Program, error) {
	if expression == "" {
		return nil, fmt.Errorf("condition: empty expression")
	}

	e.mu.RLock()
	if prg, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return prg, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if prg, ok := e.cache[expression]; ok {
		return prg, nil
	}

	prg, err := expr.Compile(expression,
		expr.Env(env{}),
		expr.AsBool(),
		expr.DisableAllBuiltins(),
	)
	if err != nil {
		return nil, fmt.Errorf("condition: compile %q: %w", expression, err)
	}

	e.cache[expression] = prg
	return prg, nil
}

var defaultEngine = NewEngine()

// Evaluate evaluates expression with the package-level engine.
func Evaluate(expression string, scope Scope) (bool, error) {
	return defaultEngine.Evaluate(expression, scope)
}

// Check checks expression with the package-level engine.
func Check(expression string) error {
	return defaultEngine.Check(expression)
}
