package tool

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for tool operations.
var (
	ErrUnknownType         = errors.New("unknown tool type")
	ErrUnknownFormat       = errors.New("unknown report format")
	ErrMissingRequiredFlag = errors.New("missing required flag")
)

// Type identifies a coverage tool by the executable it runs.
type Type string

const (
	TypeJacoco          Type = "jacococli.jar"
	TypeDotnetCoverage  Type = "dotnet-coverage"
	TypeReportGenerator Type = "reportgenerator"
)

// Name returns the display name of the tool.
func (t Type) Name() string {
	switch t {
	case TypeJacoco:
		return "Jacoco"
	case TypeDotnetCoverage:
		return "DotnetCoverage"
	case TypeReportGenerator:
		return "DotnetReportGenerator"
	default:
		return string(t)
	}
}

// String implements fmt.Stringer.
func (t Type) String() string {
	return t.Name()
}

// ParseType resolves a user supplied tool name.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(name) {
	case "jacoco", string(TypeJacoco):
		return TypeJacoco, nil
	case "dotnet-coverage", "dotnetcoverage", "dotnet":
		return TypeDotnetCoverage, nil
	default:
		return "", fmt.Errorf("%w: %s (valid: jacoco, dotnet-coverage)", ErrUnknownType, name)
	}
}

// ValidTypeNames returns the tool names accepted by ParseType.
func ValidTypeNames() []string {
	return []string{"jacoco", "dotnet-coverage"}
}

// ReportFormat is an output format for coverage reports.
type ReportFormat string

const (
	FormatCsv       ReportFormat = "Csv"
	FormatHTML      ReportFormat = "Html"
	FormatXML       ReportFormat = "Xml"
	FormatCobertura ReportFormat = "Cobertura"
)

// Extension returns the lowercase file extension for the format.
func (f ReportFormat) Extension() string {
	return strings.ToLower(string(f))
}

// ParseReportFormat resolves a format name case-insensitively.
func ParseReportFormat(name string) (ReportFormat, error) {
	for _, f := range []ReportFormat{FormatCsv, FormatHTML, FormatXML, FormatCobertura} {
		if strings.EqualFold(name, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, name)
}

// uniqueFormats drops empty and repeated formats and keeps the first occurrence order.
func uniqueFormats(formats []ReportFormat, supported func(ReportFormat) bool) []ReportFormat {
	seen := make(map[ReportFormat]bool, len(formats))
	result := make([]ReportFormat, 0, len(formats))
	for _, f := range formats {
		if f == "" || seen[f] || !supported(f) {
			continue
		}
		seen[f] = true
		result = append(result, f)
	}
	return result
}
