package rna

import (
	"errors"
	"fmt"
	"strings"
)

// ReportType is the severity of a report.
type ReportType int

const (
	ReportDebug ReportType = iota
	ReportInfo
	ReportWarning
	ReportError
)

func (t ReportType) String() string {
	switch t {
	case ReportDebug:
		return "debug"
	case ReportInfo:
		return "info"
	case ReportWarning:
		return "warning"
	case ReportError:
		return "error"
	default:
		return fmt.Sprintf("report(%d)", int(t))
	}
}

// Report is one user facing message.
type Report struct {
	Type    ReportType
	Message string
}

// ReportList collects user facing failures such as rejected type
// registrations. The zero value is ready to use.
type ReportList struct {
	reports []Report
}

// Addf appends a report.
func (l *ReportList) Addf(typ ReportType, format string, args ...any) {
	if l == nil {
		return
	}
	l.reports = append(l.reports, Report{Type: typ, Message: fmt.Sprintf(format, args...)})
}

// Reports returns the collected reports in order.
func (l *ReportList) Reports() []Report {
	if l == nil {
		return nil
	}
	out := make([]Report, len(l.reports))
	copy(out, l.reports)
	return out
}

// HasErrors reports whether an error report was collected.
func (l *ReportList) HasErrors() bool {
	if l == nil {
		return false
	}
	for _, report := range l.reports {
		if report.Type >= ReportError {
			return true
		}
	}
	return false
}

// Err joins the error reports, or returns nil.
func (l *ReportList) Err() error {
	if l == nil {
		return nil
	}
	var errs []error
	for _, report := range l.reports {
		if report.Type >= ReportError {
			errs = append(errs, errors.New(report.Message))
		}
	}
	return errors.Join(errs...)
}

// StructAvailableOrReport reports whether identifier is free for a new
// struct. When taken, an error naming the existing type and its bases is
// added to reports.
func (r *Registry) StructAvailableOrReport(reports *ReportList, identifier string) bool {
	existing := r.Find(identifier)
	if existing == nil {
		return true
	}
	var b strings.Builder
	b.WriteString(existing.Identifier)
	depth := 0
	for base := existing.Base; base != nil; base = base.Base {
		b.WriteString("(")
		b.WriteString(base.Identifier)
		depth++
	}
	b.WriteString(strings.Repeat(")", depth))
	reports.Addf(ReportError, "Type identifier '%s' is already in use: '%s'.", identifier, b.String())
	return false
}

// StructIDNameOKOrReport checks that identifier has the PREFIX<sep>suffix
// form, an upper case alphanumeric prefix and an alphanumeric suffix.
// Violations are reported as warnings and still accepted.
func StructIDNameOKOrReport(reports *ReportList, identifier, sep string) bool {
	i := strings.Index(identifier, sep)
	if sep == "" || i <= 0 || i+len(sep) >= len(identifier) {
		reports.Addf(ReportWarning, "'%s' does not contain '%s' with prefix and suffix", identifier, sep)
		return true
	}
	prefix, suffix := identifier[:i], identifier[i+len(sep):]
	for j := 0; j < len(prefix); j++ {
		c := prefix[j]
		ok := c >= 'A' && c <= 'Z' ||
			j > 0 && c >= '0' && c <= '9' ||
			j > 0 && j < len(prefix)-1 && c == '_'
		if !ok {
			reports.Addf(ReportWarning, "'%s' doesn't have upper case alpha-numeric prefix", identifier)
			return true
		}
	}
	for j := 0; j < len(suffix); j++ {
		c := suffix[j]
		ok := c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' ||
			j > 0 && j < len(suffix)-1 && c == '_'
		if !ok {
			reports.Addf(ReportWarning, "'%s' doesn't have an alpha-numeric suffix", identifier)
			return true
		}
	}
	return true
}
