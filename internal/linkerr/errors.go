// Package linkerr defines the error taxonomy shared across the linker core
// and maps each kind to the CLI exit codes in the link command's surface.
package linkerr

import "fmt"

// Kind classifies a failure so the driver and the CLI can react to it
// without string matching.
type Kind string

// The fixed taxonomy. Every fatal error raised by the core carries one of
// these.
const (
	KindIO                     Kind = "io"
	KindFormat                 Kind = "format"
	KindWrongEndian            Kind = "wrong-endian"
	KindWrongVersion           Kind = "wrong-version"
	KindModuleNotFound         Kind = "module-not-found"
	KindModuleVersionConflict  Kind = "module-version-conflict"
	KindDuplicateInDirectory   Kind = "duplicate-module-in-directory"
	KindDuplicateEntry         Kind = "duplicate-entry"
	KindPluginConfig           Kind = "plugin-config"
	KindPluginRuntime          Kind = "plugin-runtime"
	KindHashCollisionExhausted Kind = "hash-collision-exhausted"
)

// ExitCode returns the process exit code associated with a Kind, per the
// CLI surface's exit-code table. Kinds with no explicit mapping return 1.
func (k Kind) ExitCode() int {
	switch k {
	case KindModuleNotFound, KindModuleVersionConflict, KindDuplicateInDirectory:
		return 2
	case KindIO, KindFormat, KindWrongEndian, KindWrongVersion:
		return 3
	case KindPluginConfig, KindPluginRuntime, KindHashCollisionExhausted, KindDuplicateEntry:
		return 4
	default:
		return 1
	}
}

// Error is a structured failure: kind, human detail, and the offending
// artifact path / module name where applicable. Error() renders the
// one-line "kind: detail" diagnostic the spec requires.
type Error struct {
	Kind   Kind
	Detail string
	Module string
	Path   string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	if e.Module != "" {
		msg += fmt.Sprintf(" (module=%s)", e.Module)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (path=%s)", e.Path)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a bare Error for a kind and detail message.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Wrap attaches a kind to an underlying error, keeping it reachable via
// errors.Unwrap.
func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Detail: err.Error(), Err: err}
}

// WithModule returns a copy of e annotated with a module name.
func (e *Error) WithModule(name string) *Error {
	cp := *e
	cp.Module = name
	return &cp
}

// WithPath returns a copy of e annotated with an artifact/resource path.
func (e *Error) WithPath(path string) *Error {
	cp := *e
	cp.Path = path
	return &cp
}
