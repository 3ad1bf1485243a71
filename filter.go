package tabclean

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// tableEnv is the environment a filter expression is evaluated against.
type tableEnv struct {
	Sheet   string   `expr:"sheet"`
	Key     string   `expr:"key"`
	Title   string   `expr:"title"`
	Index   int      `expr:"index"`
	Rows    int      `expr:"rows"`
	Cols    int      `expr:"cols"`
	Headers []string `expr:"headers"`
}

// TableFilter selects tables with a boolean expr-lang expression, e.g.
//
//	rows > 2 && "time" in headers
type TableFilter struct {
	expression string
	program    *vm.Program
}

// NewTableFilter compiles the expression. An empty expression matches every table.
func NewTableFilter(expression string) (*TableFilter, error) {
	f := &TableFilter{expression: expression}
	if expression == "" {
		return f, nil
	}
	program, err := expr.Compile(expression, expr.Env(tableEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", expression, err)
	}
	f.program = program
	return f, nil
}

// String returns the source expression.
func (f *TableFilter) String() string {
	return f.expression
}

// Match reports whether the table of the given sheet passes the filter.
func (f *TableFilter) Match(sheet string, t TableBlock) (bool, error) {
	if f == nil || f.program == nil {
		return true, nil
	}
	env := tableEnv{
		Sheet:   sheet,
		Key:     t.Key,
		Title:   t.Title,
		Index:   t.Index,
		Rows:    len(t.Rows),
		Cols:    t.Width(),
		Headers: t.Header,
	}
	if env.Headers == nil {
		env.Headers = []string{}
	}
	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q: %w", f.expression, err)
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("filter %q evaluated to %T, expected bool", f.expression, result)
	}
	return b, nil
}
