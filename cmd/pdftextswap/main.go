/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Command pdftextswap is the CLI surface (spec.md §6): replace, search
// and parse subcommands over the replacer/textapi library packages.
//
// Grounded on examples/pdf/pdf_crop.go's initialization and
// error-reporting idiom (unicommon.SetLogger, fmt.Fprintf + os.Exit on
// failure) — but examples/pdf/*.go parse positional os.Args only, never
// more than three arguments. Spec.md §6 instead needs several named,
// optional flags per subcommand (--input, --page, --instance, ...), a
// shape positional parsing handles badly; this file uses the standard
// library's flag.NewFlagSet per subcommand instead, the conventional Go
// answer for that shape even though no file in this codebase's teacher
// corpus happens to use it.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/herryqg/pdf-parser/common"
	"github.com/herryqg/pdf-parser/model"
	"github.com/herryqg/pdf-parser/perr"
	"github.com/herryqg/pdf-parser/replacer"
	"github.com/herryqg/pdf-parser/textapi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(3)
	}

	switch os.Args[1] {
	case "replace":
		err, noOp := runReplace(os.Args[2:])
		if err != nil && perr.KindOf(err) != perr.KindFeasibility {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(perr.ExitCode(err, noOp))
	case "search":
		if err := runSearch(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(perr.ExitCode(err, false))
		}
	case "parse":
		if err := runParse(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(perr.ExitCode(err, false))
		}
	default:
		usage()
		os.Exit(3)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: pdftextswap <replace|search|parse> [flags]")
}

func runReplace(args []string) (error, bool) {
	fs := flag.NewFlagSet("replace", flag.ExitOnError)
	input := fs.String("input", "", "input PDF path")
	output := fs.String("output", "", "output PDF path")
	find := fs.String("find", "", "target string to find")
	replace := fs.String("replace", "", "replacement string")
	page := fs.Int("page", 0, "0-based page index")
	instance := fs.Int("instance", -1, "0-based match instance (-1 = all matches)")
	allowAutoInsert := fs.Bool("allow-auto-insert", false, "allocate new font codes for unsupported characters")
	verbose := fs.Int("verbose", 0, "log verbosity 0..3")
	fs.Parse(args)

	logger := common.NewWriterLogger(common.VerbosityLevel(*verbose), os.Stderr)
	if *verbose > 0 {
		logFile, ferr := os.OpenFile("pdftextswap.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if ferr == nil {
			defer logFile.Close()
			logger = common.NewWriterLogger(common.VerbosityLevel(*verbose), logFile)
		}
	}
	common.SetLogger(logger)

	doc, err := model.Open(*input)
	if err != nil {
		return err, false
	}

	opts := replacer.Options{AllowAutoInsert: *allowAutoInsert}
	if *instance >= 0 {
		opts.InstanceIndex = instance
	}

	report, err := replacer.ReplaceText(doc, *page, *find, *replace, opts)
	if report != nil {
		printReplaceReport(report, opts.InstanceIndex)
	}
	if err != nil && perr.KindOf(err) != perr.KindFeasibility {
		return err, false
	}

	noOp := report != nil && report.Rewritten == 0 && len(report.Refused) == 0
	if report != nil && report.Rewritten > 0 {
		if serr := doc.Save(*output); serr != nil {
			return serr, false
		}
		logger.Success("wrote %s (%d of %d matches rewritten)", *output, report.Rewritten, report.Located)
	}
	if perr.KindOf(err) == perr.KindFeasibility {
		return err, noOp
	}
	return nil, noOp
}

func printReplaceReport(report *replacer.ReplacementReport, instance *int) {
	for i := 0; i < report.Located; i++ {
		if instance != nil && *instance != i {
			fmt.Printf("match %d: skipped (not selected)\n", i)
			continue
		}
		refused := false
		for _, r := range report.Refused {
			if r.Instance == i {
				fmt.Printf("match %d: skipped (%s)\n", i, r.Reason)
				refused = true
				break
			}
		}
		if !refused {
			fmt.Printf("match %d: rewritten\n", i)
		}
	}
	for _, a := range report.Allocated {
		fmt.Printf("allocated %s code 0x%02X for %q\n", a.Alias, a.Code, string(a.Scalar))
	}
}

func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	input := fs.String("input", "", "input PDF path")
	find := fs.String("find", "", "needle to search for")
	page := fs.Int("page", -1, "0-based page index (-1 = every page)")
	caseSensitive := fs.Bool("case-sensitive", false, "match case exactly")
	asJSON := fs.Bool("json", false, "print results as JSON")
	jsonFile := fs.String("json-file", "", "write results as JSON to this path instead of stdout")
	fs.Parse(args)

	doc, err := model.Open(*input)
	if err != nil {
		return err
	}

	var pageIndex *int
	if *page >= 0 {
		pageIndex = page
	}

	matches, err := textapi.Search(doc, *find, pageIndex, *caseSensitive)
	if err != nil {
		return err
	}
	return emit(matches, *asJSON, *jsonFile, func() {
		for _, m := range matches {
			fmt.Printf("page %d, instance %d, font %s: %q\n", m.PageIndex, m.Instance, m.FontAlias, m.Context)
		}
	})
}

func runParse(args []string) error {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	input := fs.String("input", "", "input PDF path")
	page := fs.Int("page", 0, "0-based page index")
	asJSON := fs.Bool("json", false, "print results as JSON")
	jsonFile := fs.String("json-file", "", "write results as JSON to this path instead of stdout")
	fs.Parse(args)

	doc, err := model.Open(*input)
	if err != nil {
		return err
	}

	elems, err := textapi.ParsePageText(doc, *page)
	if err != nil {
		return err
	}
	return emit(elems, *asJSON, *jsonFile, func() {
		for _, e := range elems {
			fmt.Printf("instance %d, font %s, %s: %q\n", e.Instance, e.FontAlias, e.Operator, e.Text)
		}
	})
}

// emit writes v as JSON (to jsonFile if given, else stdout) when
// asJSON, otherwise calls plain to print the human-readable form.
func emit(v interface{}, asJSON bool, jsonFile string, plain func()) error {
	if !asJSON {
		plain()
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if jsonFile != "" {
		return os.WriteFile(jsonFile, data, 0o644)
	}
	fmt.Println(string(data))
	return nil
}
