// Package nobarehttp reports outgoing HTTP calls made through net/http's
// package-level helpers. API traffic goes through apiclient, which carries
// the base URL, timeouts, request ids and logging.
package nobarehttp

import (
	"go/ast"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer flags http.Get, http.Post, http.PostForm, http.Head and
// http.DefaultClient outside of test files.
var Analyzer = &analysis.Analyzer{
	Name: "nobarehttp",
	Doc:  "prohibits net/http package-level client helpers outside tests",
	Run:  run,
}

var forbidden = map[string]bool{
	"Get":           true,
	"Post":          true,
	"PostForm":      true,
	"Head":          true,
	"DefaultClient": true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		if strings.HasSuffix(pass.Fset.File(file.Pos()).Name(), "_test.go") {
			continue
		}

		ast.Inspect(file, func(n ast.Node) bool {
			sel, ok := n.(*ast.SelectorExpr)
			if !ok || !forbidden[sel.Sel.Name] {
				return true
			}

			obj := pass.TypesInfo.Uses[sel.Sel]
			if obj == nil || obj.Pkg() == nil || obj.Pkg().Path() != "net/http" {
				return true
			}
			// only package-level identifiers, not methods such as (*http.Client).Get
			if obj.Parent() != obj.Pkg().Scope() {
				return true
			}

			pass.Reportf(sel.Pos(), "use apiclient instead of http.%s", sel.Sel.Name)
			return true
		})
	}

	return nil, nil
}
