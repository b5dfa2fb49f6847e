// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions and parsing of selectors.
package types

import (
	"strings"

	"cost-projections/internal/errors"
)

// Node is a spatial resolution of the model
type Node string

const (
	NodeR11 Node = "R11"
	NodeR12 Node = "R12"
	NodeR20 Node = "R20"
)

// InvalidNodeMessage is returned for any resolution outside the supported set.
const InvalidNodeMessage = "Please select a valid spatial resolution: R11, R12, or R20"

// Nodes lists the supported resolutions
var Nodes = []Node{NodeR11, NodeR12, NodeR20}

// ParseNode validates a resolution, case-insensitively.
func ParseNode(s string) (Node, error) {
	n := Node(strings.ToUpper(strings.TrimSpace(s)))
	if !n.IsValid() {
		return "", errors.Input(InvalidNodeMessage).WithContext("node", s)
	}
	return n, nil
}

// IsValid checks if the node is a supported resolution
func (n Node) IsValid() bool {
	switch n {
	case NodeR11, NodeR12, NodeR20:
		return true
	default:
		return false
	}
}

// DefaultReference returns the reference region used when none is selected.
func (n Node) DefaultReference() string {
	return string(n) + "_NAM"
}

// String returns the string representation
func (n Node) String() string {
	return string(n)
}

// Method selects which trajectory reaches the final records
type Method string

const (
	// MethodLearning uses static regional ratios on the learning curve
	MethodLearning Method = "learning"

	// MethodGDP uses GDP-adjusted ratios on the learning curve
	MethodGDP Method = "gdp"

	// MethodConvergence blends toward the GDP-adjusted trajectory
	MethodConvergence Method = "convergence"
)

// ParseMethod validates a method name
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MethodLearning, MethodGDP, MethodConvergence:
		return m, nil
	}
	return "", errors.Inputf("unknown method %q: expected learning, gdp or convergence", s)
}

// Format selects the record layout
type Format string

const (
	// FormatMessage is the model's native parameter layout
	FormatMessage Format = "message"

	// FormatIAMC is a wide scenario/region/variable table
	FormatIAMC Format = "iamc"
)

// ParseFormat validates an output format
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatMessage, FormatIAMC:
		return f, nil
	}
	return "", errors.Inputf("unknown format %q: expected message or iamc", s)
}

// All is the selector value that keeps every scenario or version.
const All = "all"

// Matches reports whether value passes a selector that may be All.
func Matches(selector, value string) bool {
	return strings.EqualFold(selector, All) || strings.EqualFold(selector, value)
}
