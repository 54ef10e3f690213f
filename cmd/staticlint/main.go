// Command staticlint is the project's static analysis tool. It combines
// analyzers from the Go toolchain, third-party analyzers, selected staticcheck
// analyzers and the project's own analyzers into a single multichecker.
//
// The staticcheck selection is read from staticlint.json next to the binary,
// e.g. {"staticcheck": ["SA1000", "SA4006"]}. Without that file every SA*
// analyzer is enabled.
package main

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gordonklaus/ineffassign/pkg/ineffassign"
	"github.com/gostaticanalysis/nilerr"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"honnef.co/go/tools/staticcheck"

	"github.com/patric-chuzhbe/hackorsnooze/cmd/staticlint/nobarehttp"
	"github.com/patric-chuzhbe/hackorsnooze/cmd/staticlint/noosexit"
)

// Config is the name of the JSON file selecting staticcheck analyzers.
const Config = `staticlint.json`

// ConfigData describes the structure of the configuration file.
type ConfigData struct {
	Staticcheck []string `json:"staticcheck"`
}

func loadConfig() (ConfigData, error) {
	var cfg ConfigData

	appfile, err := os.Executable()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(filepath.Join(filepath.Dir(appfile), Config))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	return cfg, json.Unmarshal(data, &cfg)
}

func selectStaticcheck(names []string) []*analysis.Analyzer {
	enabled := make(map[string]bool, len(names))
	for _, name := range names {
		enabled[name] = true
	}

	var selected []*analysis.Analyzer
	for _, v := range staticcheck.Analyzers {
		if enabled[v.Analyzer.Name] || (len(enabled) == 0 && strings.HasPrefix(v.Analyzer.Name, "SA")) {
			selected = append(selected, v.Analyzer)
		}
	}

	return selected
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("staticlint: %v", err)
	}

	checks := []*analysis.Analyzer{
		copylock.Analyzer,     // copying of locks by value, e.g. a storyset.Set
		errorsas.Analyzer,     // errors.As with a non-pointer target
		httpresponse.Analyzer, // using an http.Response before checking the error
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		printf.Analyzer,
		structtag.Analyzer,
		unmarshal.Analyzer,
		unreachable.Analyzer,

		ineffassign.Analyzer,
		nilerr.Analyzer,

		noosexit.Analyzer,
		nobarehttp.Analyzer,
	}
	checks = append(checks, selectStaticcheck(cfg.Staticcheck)...)

	multichecker.Main(checks...)
}
