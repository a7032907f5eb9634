package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind names the failure class shown to the user.
type ErrorKind string

const (
	KindScope     ErrorKind = "scope"
	KindSchema    ErrorKind = "schema"
	KindOracle    ErrorKind = "oracle"
	KindExecution ErrorKind = "execution"
)

// ScopeError means a tool is not reachable from the active agent.
type ScopeError struct {
	Tool  string
	Agent string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("tool %q is not available to the %s agent", e.Tool, e.Agent)
}

// SchemaError means the arguments of a call do not satisfy the tool's schema.
type SchemaError struct {
	Tool     string
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(e.Problems, "; "))
}

// OracleError wraps a failed or unusable oracle exchange.
type OracleError struct {
	Op  string // classify | select
	Err error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle %s: %v", e.Op, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }

// ToolExecutionError wraps a failure raised by the tool itself.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }

// KindOf classifies err into one of the error kinds. Unknown errors count as execution failures.
func KindOf(err error) ErrorKind {
	var (
		scope  *ScopeError
		schema *SchemaError
		oracle *OracleError
	)
	switch {
	case errors.As(err, &scope):
		return KindScope
	case errors.As(err, &schema):
		return KindSchema
	case errors.As(err, &oracle):
		return KindOracle
	default:
		return KindExecution
	}
}
