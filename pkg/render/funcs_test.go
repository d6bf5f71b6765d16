package render

import (
	"strings"
	"testing"
)

// TestBuiltinFuncs runs each built-in through the html engine.
func TestBuiltinFuncs(t *testing.T) {
	engine := newHTMLEngine("{{", "}}", builtinFuncs())

	tests := []struct {
		name string
		tpl  string
		data Context
		want string
	}{
		{"Arithmetic", `{{ add 2 3 }} {{ sub 2 3 }} {{ mult 2 3 }} {{ div 7 2 }} {{ div 1 0 }} {{ mod 7 3 }} {{ mod 1 0 }}`, nil, "5 -1 6 3 0 1 0"},
		{"IncDec", `{{ inc 1 }} {{ dec 1 }}`, nil, "2 0"},
		{"MinMax", `{{ maxInt 2 9 }} {{ minInt 2 9 }}`, nil, "9 2"},
		{"IsSet", `{{ isSet .a }} {{ isSet .b }} {{ isSet .c }}`, Context{"a": "x", "b": "", "c": nil}, "true false false"},
		{"Repeat", `{{ range repeat 3 }}{{ . }}{{ end }}|{{ len (repeat -1) }}`, nil, "012|0"},
		{"List", `{{ range list "a" "b" }}{{ . }}{{ end }}`, nil, "ab"},
		{"Sanitize", `{{ sanitize .html }}`, Context{"html": `<b onclick="x()">ok</b><script>bad()</script>`}, "<b>ok</b>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := engine.Compile(tt.name, tt.tpl)
			if err != nil {
				t.Fatalf("compile failed: %v", err)
			}
			var sb strings.Builder
			if err = r.Execute(&sb, tt.data, nil); err != nil {
				t.Fatalf("execute failed: %v", err)
			}
			if sb.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, sb.String())
			}
		})
	}
}
