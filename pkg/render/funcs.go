package render

import (
	"html/template"
	"reflect"

	"github.com/microcosm-cc/bluemonday"
)

// sanitizePolicy is shared by the html func map and the pongo2 filter.
var sanitizePolicy = bluemonday.UGCPolicy()

// builtinFuncs returns the functions available to every view of the html engine.
func builtinFuncs() template.FuncMap {
	return template.FuncMap{
		"add":      add,
		"sub":      sub,
		"mult":     mult,
		"div":      div,
		"mod":      mod,
		"inc":      inc,
		"dec":      dec,
		"maxInt":   maxInt,
		"minInt":   minInt,
		"isSet":    isSet,
		"repeat":   repeat,
		"list":     list,
		"sanitize": sanitize,
	}
}

// add returns a + b.
func add(a, b int) int {
	return a + b
}

// sub returns a - b.
func sub(a, b int) int {
	return a - b
}

// mult returns a * b.
func mult(a, b int) int {
	return a * b
}

// div returns a / b (integer division). Returns 0 if b is 0.
func div(a, b int) int {
	if b == 0 {
		return 0
	}
	return a / b
}

// mod returns a % b. Returns 0 if b is 0.
func mod(a, b int) int {
	if b == 0 {
		return 0
	}
	return a % b
}

func inc(i int) int { return i + 1 }

func dec(i int) int { return i - 1 }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// isSet returns true if a value is not its zero value.
func isSet(val any) bool {
	v := reflect.ValueOf(val)
	if !v.IsValid() {
		return false
	}
	return !v.IsZero()
}

// repeat returns a slice of integers from 0 to count-1, handy for {{range}}.
func repeat(count int) []int {
	if count < 0 {
		return []int{}
	}
	s := make([]int, count)
	for i := range s {
		s[i] = i
	}
	return s
}

// list returns a slice containing all the arguments passed to it.
func list(args ...any) []any {
	return args
}

// sanitize strips unsafe markup from user supplied HTML and returns the rest unescaped.
func sanitize(s string) template.HTML {
	return template.HTML(sanitizePolicy.Sanitize(s))
}
