package indexer

// ExitCode is the completion status of an indexing run.
type ExitCode int

const (
	ExecutionOK ExitCode = iota
	DatabaseEmpty
	PeptideIDsEmpty
	DatabaseContainsMultiples
	UnexpectedResult
	IllegalParameters
)

func (c ExitCode) String() string {
	switch c {
	case ExecutionOK:
		return "ok"
	case DatabaseEmpty:
		return "database empty"
	case PeptideIDsEmpty:
		return "peptide input empty"
	case DatabaseContainsMultiples:
		return "duplicate database entries with conflicting sequence"
	case UnexpectedResult:
		return "unexpected result"
	case IllegalParameters:
		return "illegal parameters"
	}
	return "unknown"
}
