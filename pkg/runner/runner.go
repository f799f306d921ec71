// Package runner drives the table of proto-test cases: execute each query,
// fetch the single scalar it must produce, and compare it against the
// converted fixture expectation (or, for intervals, against the literal
// recovered from the query text).
package runner

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ruslano69/esql-verify/pkg/core/convert"
	"github.com/ruslano69/esql-verify/pkg/core/interval"
	"github.com/ruslano69/esql-verify/pkg/driver"
	"github.com/ruslano69/esql-verify/pkg/fixtures"
)

// intervalLiteralRe recovers the quoted interval literal from a query:
// everything up to an optional minus sign, then a single-quoted span.
var intervalLiteralRe = regexp.MustCompile(`^[^-]*(-?\s*'[^']*').*`)

// fractionalRe detects a fractional-second component inside an extracted
// interval literal.
var fractionalRe = regexp.MustCompile(`\d*\.\d+`)

// Runner executes proto-test cases against one connection.
type Runner struct {
	converter *convert.Converter
	decoder   *interval.Decoder
}

// Result summarizes a run. Skipped counts interval cases with fractional
// seconds, a known-unsupported precision upstream; they are reported, never
// silently passed.
type Result struct {
	Passed  int
	Skipped int
}

// AssertionFailure - a proto-test case produced the wrong value or shape
type AssertionFailure struct {
	Query    string
	Expected string
	Actual   string
	Reason   string
}

func (e *AssertionFailure) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("query %q: %s", e.Query, e.Reason)
	}
	return fmt.Sprintf("query %q: got %s, want %s", e.Query, e.Actual, e.Expected)
}

// New creates a Runner. The decoder must match the wide-character width of
// the driver under test.
func New(decoder *interval.Decoder) *Runner {
	return &Runner{
		converter: convert.NewConverter(),
		decoder:   decoder,
	}
}

// Run executes the cases sequentially. Output converters are installed on
// the connection's registry for the duration of the run and cleared on
// every exit path, so no converter leaks into later checks on the same
// connection. The first failure aborts the run.
func (r *Runner) Run(ctx context.Context, conn driver.Connection, cases []fixtures.TestCase) (Result, error) {
	reg := conn.Converters()
	interval.InstallIntervalConverters(reg, r.decoder)
	defer reg.Clear()

	var res Result
	for _, tc := range cases {
		skipped, err := r.runCase(ctx, conn, tc)
		if err != nil {
			return res, err
		}
		if skipped {
			res.Skipped++
		} else {
			res.Passed++
		}
	}
	return res, nil
}

func (r *Runner) runCase(ctx context.Context, conn driver.Connection, tc fixtures.TestCase) (skipped bool, err error) {
	cur, err := conn.Execute(ctx, tc.Query)
	if err != nil {
		return false, fmt.Errorf("case %q: %w", tc.Query, err)
	}
	defer cur.Close()

	row, ok, err := cur.FetchOne()
	if err != nil {
		return false, fmt.Errorf("case %q: %w", tc.Query, err)
	}
	if !ok {
		return false, &AssertionFailure{Query: tc.Query, Reason: "no rows returned"}
	}
	if len(row) != 1 {
		return false, &AssertionFailure{Query: tc.Query,
			Reason: fmt.Sprintf("returned %d columns, want 1", len(row))}
	}
	if _, more, err := cur.FetchOne(); err != nil {
		return false, fmt.Errorf("case %q: %w", tc.Query, err)
	} else if more {
		return false, &AssertionFailure{Query: tc.Query, Reason: "returned more than one row"}
	}

	if tc.LiteralValue != tc.DisplayLiteral {
		return r.checkInterval(tc, row[0])
	}
	return false, r.checkConverted(tc, row[0])
}

// checkInterval compares the decoded driver output against the literal
// embedded in the query text.
func (r *Runner) checkInterval(tc fixtures.TestCase, actual any) (bool, error) {
	if !strings.HasPrefix(strings.ToLower(tc.Query), "select interval") {
		return false, &AssertionFailure{Query: tc.Query,
			Reason: "display literal differs but the query is not an interval selection"}
	}

	m := intervalLiteralRe.FindStringSubmatch(tc.Query)
	if m == nil {
		return false, &AssertionFailure{Query: tc.Query,
			Reason: "no quoted interval literal found in query text"}
	}
	expect := strings.ReplaceAll(m[1], "'", "")

	// Fractional seconds in interval literals are a known-unsupported
	// precision upstream; skip explicitly rather than pass silently.
	if fractionalRe.MatchString(expect) {
		return true, nil
	}

	got, ok := actual.(string)
	if !ok {
		return false, &AssertionFailure{Query: tc.Query,
			Reason: fmt.Sprintf("interval value is %T, want decoded string", actual)}
	}
	if got != expect {
		return false, &AssertionFailure{Query: tc.Query, Expected: expect, Actual: got}
	}
	return false, nil
}

// checkConverted compares the driver scalar against the converted fixture
// literal.
func (r *Runner) checkConverted(tc fixtures.TestCase, actual any) error {
	// Fixture tags are lowercase by construction; a mixed-case tag means
	// the fixture row is corrupt, not that the driver misbehaved.
	if tag := string(tc.DeclaredType); strings.ToLower(tag) != tag {
		return fmt.Errorf("case %q: declared type %q is not lowercase-normalized", tc.Query, tag)
	}

	expected, err := r.converter.Convert(tc.DeclaredType, tc.LiteralValue)
	if err != nil {
		return fmt.Errorf("case %q: %w", tc.Query, err)
	}

	got, err := convert.FromDriverAs(tc.DeclaredType, actual)
	if err != nil {
		return fmt.Errorf("case %q: %w", tc.Query, err)
	}

	if !expected.Equal(got) {
		return &AssertionFailure{Query: tc.Query,
			Expected: expected.String(), Actual: got.String()}
	}
	return nil
}
