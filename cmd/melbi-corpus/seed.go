package main

import "database/sql"

// goldenCases are the end-to-end scenarios a complete implementation of
// this language must satisfy, literal-input to literal-expected-output.
var goldenCases = []corpusCase{
	{
		name:        "arithmetic_precedence",
		source:      "1 + 2 * 3",
		expectType:  "Int",
		expectValue: "7",
	},
	{
		name:        "division_by_zero_recovers_via_otherwise",
		source:      "(10 / x) otherwise 0 where { x = 0 }",
		expectType:  "Int",
		expectValue: "0",
	},
	{
		name:        "polymorphic_instantiation",
		source:      `[f({1: "one"}, 1), f({"a": "b"}, "a")] where { f = (m, k) => m[k] }`,
		expectType:  "Array[Str]",
		expectValue: "[one, b]",
	},
	{
		name:        "option_match",
		source:      "x match { some y -> y * 2, none -> 0 } where { x = some 21 }",
		expectType:  "Int",
		expectValue: "42",
	},
	{
		name:                 "nonexhaustive_bool_match",
		source:               "x match { true -> 1 } where { x = false }",
		expectDiagnosticCode: "E0204",
	},
	{
		name:                 "recursion_is_unsupported",
		source:               "factorial(5) where { factorial = (n) => if n <= 1 then 1 else n * factorial(n - 1) }",
		expectDiagnosticCode: "E0101",
	},
}

func seedGoldenCases(db *sql.DB) error {
	stmt, err := db.Prepare(`
		INSERT INTO corpus_cases (name, source, expect_type, expect_value, expect_diagnostic_code)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			source = excluded.source,
			expect_type = excluded.expect_type,
			expect_value = excluded.expect_value,
			expect_diagnostic_code = excluded.expect_diagnostic_code`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range goldenCases {
		if _, err := stmt.Exec(c.name, c.source, c.expectType, c.expectValue, c.expectDiagnosticCode); err != nil {
			return err
		}
	}
	return nil
}
