// Command melbi-corpus maintains a sqlite-backed table of golden
// (expression, expected type, expected result) rows and replays them
// against pkg/melbi.Core to catch evaluator/analyzer regressions that a
// unit test suite, run only against the code as it stood the day it was
// written, would not otherwise see diverge over time.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/melbi-lang/melbi/internal/diagnostics"
	"github.com/melbi-lang/melbi/pkg/melbi"
)

func main() {
	var (
		dbPath = flag.String("db", "melbi-corpus.db", "path to the sqlite corpus database")
		seed   = flag.Bool("seed", false, "populate the corpus with the built-in golden cases, then exit")
	)
	flag.Parse()

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "melbi-corpus: opening %s: %s\n", *dbPath, err)
		os.Exit(1)
	}
	defer db.Close()

	if err := ensureSchema(db); err != nil {
		fmt.Fprintf(os.Stderr, "melbi-corpus: %s\n", err)
		os.Exit(1)
	}

	if *seed {
		if err := seedGoldenCases(db); err != nil {
			fmt.Fprintf(os.Stderr, "melbi-corpus: seeding: %s\n", err)
			os.Exit(1)
		}
		fmt.Println("seeded")
		return
	}

	cases, err := loadCases(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "melbi-corpus: loading cases: %s\n", err)
		os.Exit(1)
	}

	failures := runCases(cases)
	for _, f := range failures {
		fmt.Fprintln(os.Stderr, f)
	}
	fmt.Printf("%d cases, %d failed\n", len(cases), len(failures))
	if len(failures) > 0 {
		os.Exit(1)
	}
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS corpus_cases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			source TEXT NOT NULL,
			expect_type TEXT,
			expect_value TEXT,
			expect_diagnostic_code TEXT
		)`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// corpusCase is one row of corpus_cases. Exactly one of (expectType,
// expectValue) or expectDiagnosticCode is populated: a case either expects
// a successful evaluation to a specific value, or expects compilation to
// fail with a specific diagnostics.Code.
type corpusCase struct {
	name                 string
	source               string
	expectType           string
	expectValue          string
	expectDiagnosticCode string
}

func loadCases(db *sql.DB) ([]corpusCase, error) {
	rows, err := db.Query(`SELECT name, source, expect_type, expect_value, expect_diagnostic_code FROM corpus_cases ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []corpusCase
	for rows.Next() {
		var (
			c                   corpusCase
			expectType          sql.NullString
			expectValue         sql.NullString
			expectDiagnosticCde sql.NullString
		)
		if err := rows.Scan(&c.name, &c.source, &expectType, &expectValue, &expectDiagnosticCde); err != nil {
			return nil, err
		}
		c.expectType = expectType.String
		c.expectValue = expectValue.String
		c.expectDiagnosticCode = expectDiagnosticCde.String
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

func runCases(cases []corpusCase) []string {
	var failures []string
	core := melbi.New()
	ctx := context.Background()

	for _, c := range cases {
		if c.expectDiagnosticCode != "" {
			compiled, err := core.Compile(c.source)
			if err == nil {
				failures = append(failures, fmt.Sprintf("%s: expected diagnostic %s, compiled cleanly", c.name, c.expectDiagnosticCode))
				continue
			}
			if !hasCode(compiled.Diagnostics(), c.expectDiagnosticCode) {
				failures = append(failures, fmt.Sprintf("%s: expected diagnostic %s, got %s", c.name, c.expectDiagnosticCode, compiled.Diagnostics()))
			}
			continue
		}

		compiled, err := core.Compile(c.source)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: unexpected compile error: %s", c.name, err))
			continue
		}
		if gotType := compiled.Type().String(); c.expectType != "" && gotType != c.expectType {
			failures = append(failures, fmt.Sprintf("%s: expected type %s, got %s", c.name, c.expectType, gotType))
		}

		result, err := core.Evaluate(ctx, compiled, nil, core.Limits())
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: unexpected eval error: %s", c.name, err))
			continue
		}
		if got := result.String(); got != c.expectValue {
			failures = append(failures, fmt.Sprintf("%s: expected %s, got %s", c.name, c.expectValue, got))
		}
	}
	return failures
}

func hasCode(diags diagnostics.List, code string) bool {
	for _, d := range diags {
		if string(d.Code) == code {
			return true
		}
	}
	return false
}
