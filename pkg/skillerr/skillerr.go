// Package skillerr defines the error discriminants surfaced by the skill
// lifecycle core. Every failure the CLI layer needs to tell apart carries a
// Kind, and each Kind belongs to one Category that maps to a process exit code.
package skillerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies a specific failure mode.
type Kind string

// Validation kinds, reported in the fixed order the validator checks them.
const (
	DescriptorMissing        Kind = "DescriptorMissing"
	FrontmatterMissing       Kind = "FrontmatterMissing"
	FrontmatterMalformed     Kind = "FrontmatterMalformed"
	FrontmatterEmpty         Kind = "FrontmatterEmpty"
	NameMissing              Kind = "NameMissing"
	NameNotString            Kind = "NameNotString"
	NameLengthInvalid        Kind = "NameLengthInvalid"
	NameFormatInvalid        Kind = "NameFormatInvalid"
	DescriptionMissing       Kind = "DescriptionMissing"
	DescriptionNotString     Kind = "DescriptionNotString"
	DescriptionLengthInvalid Kind = "DescriptionLengthInvalid"
	NameDirectoryMismatch    Kind = "NameDirectoryMismatch"
)

// Registry kinds.
const (
	DuplicateSkill   Kind = "DuplicateSkill"
	SkillNotFound    Kind = "SkillNotFound"
	NameUndetermined Kind = "NameUndetermined"
	NoStoredSource   Kind = "NoStoredSource"
	UnsupportedAgent Kind = "UnsupportedAgent"
)

// Git kinds.
const (
	UnsupportedRootInstall Kind = "UnsupportedRootInstall"
	SubpathNotFound        Kind = "SubpathNotFound"
	GitProcessFailed       Kind = "GitProcessFailed"
)

// FilesystemError marks failures coming from the storage layer.
const FilesystemError Kind = "FilesystemError"

// Category groups kinds for exit-code mapping.
type Category string

// Categories
const (
	CategoryValidation Category = "validation"
	CategoryRegistry   Category = "registry"
	CategoryGit        Category = "git"
	CategoryFilesystem Category = "filesystem"
	CategoryUnknown    Category = "unknown"
)

var categories = map[Kind]Category{
	DescriptorMissing:        CategoryValidation,
	FrontmatterMissing:       CategoryValidation,
	FrontmatterMalformed:     CategoryValidation,
	FrontmatterEmpty:         CategoryValidation,
	NameMissing:              CategoryValidation,
	NameNotString:            CategoryValidation,
	NameLengthInvalid:        CategoryValidation,
	NameFormatInvalid:        CategoryValidation,
	DescriptionMissing:       CategoryValidation,
	DescriptionNotString:     CategoryValidation,
	DescriptionLengthInvalid: CategoryValidation,
	NameDirectoryMismatch:    CategoryValidation,

	DuplicateSkill:   CategoryRegistry,
	SkillNotFound:    CategoryRegistry,
	NameUndetermined: CategoryRegistry,
	NoStoredSource:   CategoryRegistry,
	UnsupportedAgent: CategoryRegistry,

	UnsupportedRootInstall: CategoryGit,
	SubpathNotFound:        CategoryGit,
	GitProcessFailed:       CategoryGit,

	FilesystemError: CategoryFilesystem,
}

// Category returns the category the kind belongs to.
func (k Kind) Category() Category {
	if c, ok := categories[k]; ok {
		return c
	}
	return CategoryUnknown
}

// Error is a failure tagged with a Kind.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.cause != nil {
		return e.cause.Error()
	}
	return string(e.Kind)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Cause implements the pkg/errors causer interface.
func (e *Error) Cause() error {
	return e.cause
}

// New creates an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags cause with kind. A nil cause yields nil.
func Wrap(cause error, kind Kind, format string, args ...any) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ExitCode maps an error to a process exit code: 0 for nil, 2 for validation,
// 3 for registry, 4 for git and 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err).Category() {
	case CategoryValidation:
		return 2
	case CategoryRegistry:
		return 3
	case CategoryGit:
		return 4
	default:
		return 1
	}
}
