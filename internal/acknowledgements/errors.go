package acknowledgements

import (
	"errors"
	"fmt"

	"github.com/StinkyLord/xctools/internal/derived"
	"github.com/StinkyLord/xctools/internal/output"
	"github.com/StinkyLord/xctools/internal/packages"
)

// Kind classifies pipeline failures.
type Kind int

const (
	// Unknown is used for errors that no component sentinel matches.
	Unknown Kind = iota
	NotFound
	ParseError
	IoError
	ConfigurationError
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case ParseError:
		return "parse error"
	case IoError:
		return "io error"
	case ConfigurationError:
		return "configuration error"
	default:
		return "unknown"
	}
}

// Error is returned by Generate. Op names the pipeline step that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// kinds maps component sentinels to their error kind, checked in order.
var kinds = []struct {
	sentinel error
	kind     Kind
}{
	{derived.ErrNoArtifactsFound, NotFound},
	{packages.ErrCheckoutsDirMissing, NotFound},
	{packages.ErrManifestRead, NotFound},
	{packages.ErrManifestParse, ParseError},
	{derived.ErrSearch, IoError},
	{packages.ErrDirRead, IoError},
	{packages.ErrLicenseRead, IoError},
	{output.ErrSerialization, IoError},
	{output.ErrWrite, IoError},
	{derived.ErrHomeDirectoryUnavailable, ConfigurationError},
	{derived.ErrEmptyAppName, ConfigurationError},
	{ErrUnknownFormat, ConfigurationError},
}

// Classify returns the Kind of err. An *Error anywhere in the chain wins
// over sentinel matching.
func Classify(err error) Kind {
	if err == nil {
		return Unknown
	}
	var e *Error
	if errors.As(err, &e) && e.Kind != Unknown {
		return e.Kind
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return Unknown
}

// wrap tags err with op and its classified kind. nil stays nil.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: Classify(err), Op: op, Err: err}
}

// ErrUnknownFormat is returned for an output format other than Format*.
var ErrUnknownFormat = errors.New("unknown output format")

func unknownFormat(f Format) error {
	return fmt.Errorf("%w %q (want %q or %q)", ErrUnknownFormat, f, FormatAcknowledgements, FormatCycloneDX)
}
