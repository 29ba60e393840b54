package services

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"sort"
	"strings"
	"testing"
)

var repoWriteMethods = map[string]bool{
	"Create":            true,
	"CreateIfAbsent":    true,
	"UpdateFields":      true,
	"SetLastPosition":   true,
	"IncrementAttempts": true,
	"DeleteByTask":      true,
	"UpsertByCode":      true,
	"LockByUserTheme":   true,
	"LockByUserCourse":  true,
}

type serviceFields struct {
	repos      map[string]string
	aggregates map[string]string
}

func parseServices(t *testing.T) (*token.FileSet, map[string]*ast.File) {
	t.Helper()
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, ".", func(fi os.FileInfo) bool {
		return strings.HasSuffix(fi.Name(), ".go") && !strings.HasSuffix(fi.Name(), "_test.go")
	}, 0)
	if err != nil {
		t.Fatalf("parse services: %v", err)
	}
	pkg, ok := pkgs["services"]
	if !ok {
		t.Fatalf("services package not found")
	}
	return fset, pkg.Files
}

func collectFields(files map[string]*ast.File) map[string]serviceFields {
	out := map[string]serviceFields{}
	for _, f := range files {
		ast.Inspect(f, func(n ast.Node) bool {
			ts, ok := n.(*ast.TypeSpec)
			if !ok {
				return true
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok || st.Fields == nil {
				return true
			}
			sf := serviceFields{repos: map[string]string{}, aggregates: map[string]string{}}
			for _, field := range st.Fields.List {
				sel, ok := field.Type.(*ast.SelectorExpr)
				if !ok || len(field.Names) == 0 {
					continue
				}
				pkgIdent, ok := sel.X.(*ast.Ident)
				if !ok {
					continue
				}
				for _, name := range field.Names {
					switch pkgIdent.Name {
					case "repos":
						sf.repos[name.Name] = sel.Sel.Name
					case "domainagg":
						if strings.HasSuffix(sel.Sel.Name, "Aggregate") {
							sf.aggregates[name.Name] = sel.Sel.Name
						}
					}
				}
			}
			out[ts.Name.Name] = sf
			return true
		})
	}
	return out
}

// depsFieldCall matches x.deps.<field>.<method>(...) and returns field and method.
func depsFieldCall(call *ast.CallExpr) (string, string, bool) {
	method, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return "", "", false
	}
	field, ok := method.X.(*ast.SelectorExpr)
	if !ok {
		return "", "", false
	}
	deps, ok := field.X.(*ast.SelectorExpr)
	if !ok || deps.Sel.Name != "deps" {
		return "", "", false
	}
	return field.Sel.Name, method.Sel.Name, true
}

func TestServicesHoldNoWritableRepos(t *testing.T) {
	_, files := parseServices(t)
	for name, sf := range collectFields(files) {
		for field, repoType := range sf.repos {
			if strings.HasSuffix(repoType, "Repo") {
				t.Fatalf("%s.%s holds repos.%s; service writes must go through an aggregate", name, field, repoType)
			}
		}
	}
}

func TestServiceWritesGoThroughAggregates(t *testing.T) {
	fset, files := parseServices(t)
	fields := collectFields(files)
	deps := fields["QueueServiceDeps"]
	if len(deps.aggregates) == 0 {
		t.Fatalf("QueueServiceDeps should expose aggregates")
	}

	writers := map[string]bool{"EnterTheme": true, "RecordAttempt": true, "SyncThemeTasks": true}
	aggCalls := map[string][]string{}
	for _, f := range files {
		for _, decl := range f.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Recv == nil || fd.Body == nil {
				continue
			}
			ast.Inspect(fd.Body, func(n ast.Node) bool {
				call, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}
				field, method, ok := depsFieldCall(call)
				if !ok {
					return true
				}
				if _, isRepo := deps.repos[field]; isRepo && repoWriteMethods[method] {
					t.Fatalf("%s: %s calls repo write %s.%s", fset.Position(call.Pos()), fd.Name.Name, field, method)
				}
				if _, isAgg := deps.aggregates[field]; isAgg {
					aggCalls[fd.Name.Name] = append(aggCalls[fd.Name.Name], field+"."+method)
				}
				return true
			})
		}
	}

	var missing []string
	for name := range writers {
		if len(aggCalls[name]) == 0 {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	if len(missing) > 0 {
		t.Fatalf("write operations without aggregate calls: %v", missing)
	}
}
