package hook

import (
	"fmt"
	"strings"
)

// Operation names understood by the host.
const (
	OpExecute    = "Execute"
	OpCreateLink = "CreateLink"
)

// Operation describes one installer operation. Args are passed positionally
// to the host and may contain @Var@ placeholders.
type Operation struct {
	Name     string
	Args     []string
	Elevated bool
}

func (o Operation) String() string {
	prefix := ""
	if o.Elevated {
		prefix = "elevated "
	}
	quoted := make([]string, len(o.Args))
	for i, a := range o.Args {
		quoted[i] = fmt.Sprintf("%q", a)
	}
	return prefix + o.Name + "(" + strings.Join(quoted, ", ") + ")"
}

// Expand returns a copy of op with every @Key@ placeholder in its arguments
// replaced by vars[Key]. Placeholders without a value are left untouched.
func Expand(op Operation, vars map[string]string) Operation {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "@"+k+"@", v)
	}
	r := strings.NewReplacer(pairs...)

	out := Operation{Name: op.Name, Elevated: op.Elevated, Args: make([]string, len(op.Args))}
	for i, a := range op.Args {
		out.Args[i] = r.Replace(a)
	}
	return out
}
