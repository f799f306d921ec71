package validators

import "fmt"

// IntegrityMismatch - the reconstructed CSV digest disagrees with the
// fixture registry. The full reconstructed text is carried for diagnosis.
type IntegrityMismatch struct {
	Index    string
	Expected string
	Actual   string
	CSV      string
}

func (e *IntegrityMismatch) Error() string {
	return fmt.Sprintf("reconstructed CSV differs from original for index %q: digest %s, want %s\nreconstructed CSV:\n%s",
		e.Index, e.Actual, e.Expected, e.CSV)
}

// CountMismatch - cursor exhaustion consumed a different number of rows
// than the fixture expects
type CountMismatch struct {
	Index    string
	Expected int
	Actual   int
}

func (e *CountMismatch) Error() string {
	return fmt.Sprintf("index %q contains %d documents, want %d",
		e.Index, e.Actual, e.Expected)
}

// MetadataMismatch - a catalog/table/column enumeration returned the wrong
// shape
type MetadataMismatch struct {
	Check  string
	Detail string
}

func (e *MetadataMismatch) Error() string {
	return fmt.Sprintf("%s: %s", e.Check, e.Detail)
}
