package validation

// Severity is the weight of a finding. Only SeverityError blocks.
type Severity string

const (
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
)

// Finding is one validation result.
type Finding struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Findings is an ordered list of results.
type Findings []Finding

// Blocking reports whether any finding is an error.
func (f Findings) Blocking() bool {
	for _, finding := range f {
		if finding.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Filter returns the findings of one severity, keeping order.
func (f Findings) Filter(sev Severity) Findings {
	var out Findings
	for _, finding := range f {
		if finding.Severity == sev {
			out = append(out, finding)
		}
	}
	return out
}

// Count returns the number of findings of one severity.
func (f Findings) Count(sev Severity) int {
	return len(f.Filter(sev))
}

// Messages returns the finding messages in order.
func (f Findings) Messages() []string {
	out := make([]string, len(f))
	for i, finding := range f {
		out[i] = finding.Message
	}
	return out
}

func newError(msg string) Finding   { return Finding{Severity: SeverityError, Message: msg} }
func newWarning(msg string) Finding { return Finding{Severity: SeverityWarning, Message: msg} }
func newSuccess(msg string) Finding { return Finding{Severity: SeveritySuccess, Message: msg} }
