// SPDX-License-Identifier: MPL-2.0

package pkgspec

import (
	"fmt"
	"strings"
)

const (
	// ModePackage installs a named package, a pinned version or a VCS location.
	ModePackage Mode = iota
	// ModeEditable links a local or VCS source tree into the environment (pip -e).
	ModeEditable
	// ModeRequirementsFile installs everything listed in a requirements file (pip -r).
	ModeRequirementsFile
)

type (
	// Mode is the pip installation mode implied by a requirement string.
	Mode int

	// Requirement is a raw pip install argument classified by mode.
	//
	// Target is the token handed to pip after the mode flag. Spec is the
	// canonical package it names, or nil for requirements files, which never
	// match a single package.
	Requirement struct {
		Mode   Mode
		Target string
		Spec   Spec
	}
)

var (
	editableMarkers     = []string{"-e", "--editable"}
	requirementsMarkers = []string{"-r", "--requirement"}
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModePackage:
		return "package"
	case ModeEditable:
		return "editable"
	case ModeRequirementsFile:
		return "requirements"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseRequirement classifies a raw requirement string.
//
//	ParseRequirement("requests==2.31.0")             // package
//	ParseRequirement("-e git+https://h/x.git#egg=y") // editable, Spec y
//	ParseRequirement("-r requirements.txt")          // requirements file
func ParseRequirement(raw string) Requirement {
	raw = strings.TrimSpace(raw)

	if target, ok := cutMarker(raw, requirementsMarkers); ok {
		return Requirement{Mode: ModeRequirementsFile, Target: target}
	}
	if target, ok := cutMarker(raw, editableMarkers); ok {
		return Requirement{Mode: ModeEditable, Target: target, Spec: Parse(target)}
	}
	return Requirement{Mode: ModePackage, Target: raw, Spec: Parse(raw)}
}

// PairRequirement builds a package requirement from a (name, version) pair.
func PairRequirement(name, version string) Requirement {
	spec := FromPair(name, version)
	return Requirement{Mode: ModePackage, Target: spec.String(), Spec: spec}
}

// SpecRequirement builds a package requirement from an existing Spec.
func SpecRequirement(spec Spec) Requirement {
	spec = Normalize(spec)
	return Requirement{Mode: ModePackage, Target: spec.String(), Spec: spec}
}

// Args returns the requirement as discrete pip argv tokens.
func (r Requirement) Args() []string {
	switch r.Mode {
	case ModeEditable:
		return []string{"-e", r.Target}
	case ModeRequirementsFile:
		return []string{"-r", r.Target}
	default:
		return []string{r.Target}
	}
}

// Checkable reports whether the installed state of the requirement can be
// determined by name. Editable and requirements-file directives cannot.
func (r Requirement) Checkable() bool {
	return r.Mode == ModePackage && r.Spec != nil
}

// Name returns the canonical package name, or the target for requirements files.
func (r Requirement) Name() string {
	if r.Spec == nil {
		return r.Target
	}
	return r.Spec.PackageName()
}

// String returns the requirement as it would appear on a pip command line.
func (r Requirement) String() string {
	return strings.Join(r.Args(), " ")
}

// cutMarker strips a leading flag such as "-r" when it is followed by
// whitespace or '=' and a non-empty value.
func cutMarker(raw string, markers []string) (string, bool) {
	for _, m := range markers {
		rest, ok := strings.CutPrefix(raw, m)
		if !ok || rest == "" {
			continue
		}
		switch {
		case rest[0] == ' ' || rest[0] == '\t':
		case rest[0] == '=' && strings.HasPrefix(m, "--"):
			rest = rest[1:]
		default:
			continue
		}
		if target := strings.TrimSpace(rest); target != "" {
			return target, true
		}
	}
	return "", false
}
