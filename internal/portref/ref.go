package portref

import (
	"strings"

	"github.com/vk/framegraph/internal/errdefs"
)

// Ref is a parsed "pass.port" reference.
type Ref struct {
	Pass string
	Port string
}

// String serializes the Ref into its canonical "pass.port" form.
func (r Ref) String() string {
	if r.Port == "" {
		return r.Pass
	}
	return r.Pass + "." + r.Port
}

// Parse splits raw into its pass and port parts.
func Parse(raw string) (Ref, error) {
	if raw == "" {
		return Ref{}, errdefs.New(errdefs.ErrInvalidName, "reference cannot be empty")
	}

	passName, portName, found := strings.Cut(raw, ".")
	if !found {
		return Ref{}, errdefs.New(errdefs.ErrInvalidName, "expected the form pass.port").WithRef(raw)
	}
	if err := ValidatePassName(passName); err != nil {
		return Ref{}, errdefs.New(errdefs.ErrInvalidName, "bad pass name").WithRef(raw)
	}
	if strings.TrimSpace(portName) == "" {
		return Ref{}, errdefs.New(errdefs.ErrInvalidName, "port name cannot be empty").WithRef(raw)
	}

	return Ref{Pass: passName, Port: portName}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level constants.
func MustParse(raw string) Ref {
	r, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return r
}

// ValidatePassName rejects names that could not be addressed by a reference.
func ValidatePassName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errdefs.New(errdefs.ErrInvalidName, "pass name cannot be empty")
	}
	if strings.ContainsRune(name, '.') {
		return errdefs.New(errdefs.ErrInvalidName, "pass name %q cannot contain '.'", name)
	}
	return nil
}
