package ecosystem

import (
	"errors"
	"fmt"
)

// Structural ingestion failures. These abort an ingestion; they are never
// part of the documented content.
var (
	ErrInvalidGraph      = errors.New("invalid package graph")
	ErrMissingEra        = errors.New("era request has no tag for the package")
	ErrUnknownDependency = errors.New("unknown dependency package")
	ErrUnsnappable       = errors.New("dependency version pattern matches no release")
	ErrUnknownModule     = errors.New("unknown module")
	ErrUnknownSymbol     = errors.New("unknown symbol")
	ErrNoStore           = errors.New("no store configured")
)

// Lookup failures of Ecosystem.Link.
var (
	ErrUnknownPackage = errors.New("unknown package")
	ErrUnknownRelease = errors.New("version pattern matches no release")
)

// Phase names one step of the ingestion state machine.
type Phase string

const (
	PhaseAllocateIdentity     Phase = "allocate_identity"
	PhaseRegisterModules      Phase = "register_modules_and_dependencies"
	PhaseResolvePins          Phase = "resolve_upstream_pins"
	PhaseRegisterSymbols      Phase = "register_symbols_and_articles"
	PhaseInheritDocumentation Phase = "detect_inherited_documentation"
	PhaseCompile              Phase = "compile_documentation"
	PhaseCommit               Phase = "commit"
)

// IngestErrorCode categorizes ingestion failures.
type IngestErrorCode string

const (
	// ErrCodeStructural indicates a malformed fact stream or era request.
	ErrCodeStructural IngestErrorCode = "STRUCTURAL"

	// ErrCodeCancelled indicates the context was cancelled at a phase
	// boundary.
	ErrCodeCancelled IngestErrorCode = "CANCELLED"

	// ErrCodeDuplicate indicates the release tag is already recorded.
	ErrCodeDuplicate IngestErrorCode = "DUPLICATE_RELEASE"

	// ErrCodePersist indicates the release could not be written.
	ErrCodePersist IngestErrorCode = "PERSIST_FAILED"

	// ErrCodeArtifacts indicates the sitemap or search artifacts could not
	// be rebuilt.
	ErrCodeArtifacts IngestErrorCode = "ARTIFACTS_FAILED"
)

// IngestError reports why an ingestion was abandoned and in which phase.
type IngestError struct {
	Code    IngestErrorCode
	Phase   Phase
	Package string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *IngestError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Package != "" {
		return fmt.Sprintf("%s: %s (package=%s, phase=%s)", e.Code, msg, e.Package, e.Phase)
	}
	return fmt.Sprintf("%s: %s (phase=%s)", e.Code, msg, e.Phase)
}

// Unwrap returns the underlying cause.
func (e *IngestError) Unwrap() error {
	return e.Err
}

// IsCancelled returns true if the error is a cancelled ingestion.
// Uses errors.As to handle wrapped errors.
func IsCancelled(err error) bool {
	var ie *IngestError
	if errors.As(err, &ie) {
		return ie.Code == ErrCodeCancelled
	}
	return false
}

// IsStructural returns true if the error is a structural ingestion error.
func IsStructural(err error) bool {
	var ie *IngestError
	if errors.As(err, &ie) {
		return ie.Code == ErrCodeStructural
	}
	return false
}

func structural(phase Phase, pkg string, err error, format string, args ...any) *IngestError {
	return &IngestError{
		Code:    ErrCodeStructural,
		Phase:   phase,
		Package: pkg,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}
