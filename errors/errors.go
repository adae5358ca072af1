package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad    Phase = "load"    // module loading
	PhaseDecode  Phase = "decode"  // wire format to module
	PhaseEncode  Phase = "encode"  // module to wire format
	PhaseMatch   Phase = "match"   // instruction matching
	PhaseRewrite Phase = "rewrite" // instruction replacement
	PhaseResolve Phase = "resolve" // host member resolution
	PhaseConfig  Phase = "config"  // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidData   Kind = "invalid_data"
	KindInvalidInput  Kind = "invalid_input"
	KindNotFound      Kind = "not_found"
	KindUnsupported   Kind = "unsupported"
	KindStackMismatch Kind = "stack_mismatch"
	KindNilPointer    Kind = "nil_pointer"
	KindCanceled      Kind = "canceled"
)

// Error is the structured error type used throughout modcompat
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Member string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "::"))
	}

	if e.Type != "" || e.Member != "" {
		b.WriteString(": ")
		switch {
		case e.Type != "" && e.Member != "":
			b.WriteString(e.Type)
			b.WriteByte('.')
			b.WriteString(e.Member)
		case e.Type != "":
			b.WriteString("type ")
			b.WriteString(e.Type)
		default:
			b.WriteString("member ")
			b.WriteString(e.Member)
		}
	}

	if e.Detail != "" {
		if e.Type != "" || e.Member != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the type/method path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the declaring type name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Member sets the member name
func (b *Builder) Member(m string) *Builder {
	b.err.Member = m
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// AccessorNotFound creates the fatal resolution error raised when the host
// interface does not expose an expected accessor method.
func AccessorNotFound(typeName, method string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindNotFound,
		Type:   typeName,
		Member: method,
		Detail: "host interface does not expose accessor",
	}
}

// StackMismatch creates an error for a replacement that changes the
// evaluation stack shape of the instruction it replaced.
func StackMismatch(path []string, original, replacement string) *Error {
	return &Error{
		Phase:  PhaseRewrite,
		Kind:   KindStackMismatch,
		Path:   path,
		Detail: fmt.Sprintf("replacing %s with %s changes the stack effect", original, replacement),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Detail: fmt.Sprintf("nil %s", what),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// WithPath returns a copy of err with path prefixed to its path. Non-structured
// errors are wrapped into a rewrite-phase error.
func WithPath(err error, path ...string) error {
	if err == nil {
		return nil
	}
	e, ok := err.(*Error)
	if !ok {
		return &Error{
			Phase: PhaseRewrite,
			Kind:  KindInvalidData,
			Path:  path,
			Cause: err,
		}
	}
	cp := *e
	cp.Path = append(append([]string{}, path...), e.Path...)
	return &cp
}

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// Config creates a configuration error
func Config(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}
