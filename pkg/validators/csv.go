// Package validators holds the structural checks the suite runs against the
// driver under test: CSV round-trip reconstruction, paged-cursor behavior
// and catalog metadata shape.
package validators

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ruslano69/esql-verify/pkg/driver"
	"github.com/ruslano69/esql-verify/pkg/fixtures"
)

// Reconstructor streams an indexed dataset through the driver and rebuilds
// the CSV it was loaded from, for digest comparison against the fixture.
type Reconstructor struct {
	registry *fixtures.Registry
}

// NewReconstructor creates a Reconstructor over the fixture registry.
func NewReconstructor(registry *fixtures.Registry) *Reconstructor {
	return &Reconstructor{registry: registry}
}

// Reconstruct selects exactly cols (in order) from the index and serializes
// the result: a header line of comma-joined names, then one comma-joined
// line per row. Values are not quoted or escaped; embedded commas would
// corrupt the output (known limitation of the fixture format).
func (r *Reconstructor) Reconstruct(ctx context.Context, conn driver.Connection, index string, cols []string) (string, int, error) {
	stmt := fmt.Sprintf("select %s from %s", strings.Join(cols, ","), index)
	cur, err := conn.Execute(ctx, stmt)
	if err != nil {
		return "", 0, err
	}
	defer cur.Close()

	var b strings.Builder
	b.WriteString(strings.Join(cols, ","))
	b.WriteString("\n")

	count := 0
	for {
		row, ok, err := cur.FetchOne()
		if err != nil {
			return "", count, err
		}
		if !ok {
			break
		}
		vals := make([]string, len(row))
		for i, v := range row {
			vals[i] = formatValue(v)
		}
		b.WriteString(strings.Join(vals, ","))
		b.WriteString("\n")
		count++
	}

	return b.String(), count, nil
}

// Verify reconstructs the index's CSV and compares its md5 digest with the
// registry's expectation.
//
// The expected digest is only meaningful if the engine's natural scan order
// is deterministic: the query carries no ORDER BY, so ordering is an
// assumption inherited from the fixture, not something this check enforces.
func (r *Reconstructor) Verify(ctx context.Context, conn driver.Connection, index string) error {
	attrs, err := r.registry.CsvAttributes(index)
	if err != nil {
		return err
	}

	csv, _, err := r.Reconstruct(ctx, conn, index, attrs.ColumnNames)
	if err != nil {
		return err
	}

	sum := md5.Sum([]byte(csv))
	digest := hex.EncodeToString(sum[:])
	if digest != attrs.Digest {
		return &IntegrityMismatch{
			Index:    index,
			Expected: attrs.Digest,
			Actual:   digest,
			CSV:      csv,
		}
	}
	return nil
}

// formatValue renders one driver value as a CSV field: absent values become
// the empty string, timestamps ISO-8601 with a literal Z suffix, everything
// else its driver-native string form.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return formatTimestamp(x)
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// formatTimestamp renders a UTC instant the way the source CSV carried it:
// seconds precision, a microsecond fraction only when non-zero, Z suffix.
func formatTimestamp(t time.Time) string {
	t = t.UTC()
	s := t.Format("2006-01-02T15:04:05")
	if micros := t.Nanosecond() / 1000; micros != 0 {
		s += fmt.Sprintf(".%06d", micros)
	}
	return s + "Z"
}
