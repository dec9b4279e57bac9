// Package main запускает multichecker для проекта.
//
// Набор анализаторов:
// - проходы go/analysis/passes: shadow, structtag, nilness, fieldalignment,
//   printf, errorsas, lostcancel
// - SA-анализаторы staticcheck, а также S1000 и U1000
// - bodyclose
// - noexit (запрещает прямой вызов os.Exit в main.main)
//
// Запуск:
//
//	go run ./cmd/staticlint ./...
package main

import (
	"strings"

	"github.com/timakin/bodyclose/passes/bodyclose"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/fieldalignment"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"honnef.co/go/tools/analysis/lint"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/unused"

	"github.com/Totarae/recommender/cmd/staticlint/noexit"
)

// extraChecks проверки honnef.co/go/tools вне класса SA.
var extraChecks = map[string]bool{
	"S1000": true,
	"U1000": true,
}

func main() {
	multichecker.Main(analyzers()...)
}

func analyzers() []*analysis.Analyzer {
	list := []*analysis.Analyzer{
		shadow.Analyzer,
		structtag.Analyzer,
		nilness.Analyzer,
		fieldalignment.Analyzer,
		printf.Analyzer,
		errorsas.Analyzer,
		lostcancel.Analyzer,
	}

	checks := make([]*lint.Analyzer, 0, len(staticcheck.Analyzers)+len(simple.Analyzers)+1)
	checks = append(checks, staticcheck.Analyzers...)
	checks = append(checks, simple.Analyzers...)
	checks = append(checks, unused.Analyzer)

	for _, a := range checks {
		name := a.Analyzer.Name
		if strings.HasPrefix(name, "SA") || extraChecks[name] {
			list = append(list, a.Analyzer)
		}
	}

	return append(list, bodyclose.Analyzer, noexit.NewAnalyzer())
}
