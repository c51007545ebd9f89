// SPDX-License-Identifier: MPL-2.0

package pkgspec

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
)

const (
	// VersionSeparator separates a package name from its pinned version.
	VersionSeparator = "=="

	vcsSuffix   = ".git"
	vcsRefMark  = ".git@"
	eggFragment = "#egg="
)

type (
	// Spec is a canonical package specification.
	// The only implementations are NameOnly and NameVersion.
	Spec interface {
		// PackageName returns the canonical package name.
		PackageName() string
		// String returns the spec in pip's requirement syntax.
		String() string

		isSpec()
	}

	// NameOnly identifies a package without pinning a version.
	NameOnly struct {
		Name string
	}

	// NameVersion identifies a package pinned to an exact version.
	NameVersion struct {
		Name    string
		Version string
	}
)

// PackageName implements Spec.
func (s NameOnly) PackageName() string { return s.Name }

// String implements Spec.
func (s NameOnly) String() string { return s.Name }

func (NameOnly) isSpec() {}

// PackageName implements Spec.
func (s NameVersion) PackageName() string { return s.Name }

// String implements Spec.
func (s NameVersion) String() string { return s.Name + VersionSeparator + s.Version }

func (NameVersion) isSpec() {}

// Parse canonicalizes a raw pip specification string.
//
// The version is split off at the first "==" before the name rules run, so
// "git+https://host/repo.git#egg=pkg==1.0" yields NameVersion{"pkg", "1.0"}.
func Parse(raw string) Spec {
	name, version, _ := strings.Cut(strings.TrimSpace(raw), VersionSeparator)
	return FromPair(name, version)
}

// FromPair builds a Spec from an explicit (name, version) pair.
// The name is canonicalized; an empty version yields NameOnly.
func FromPair(name, version string) Spec {
	name = NormalizeName(name)
	version = strings.TrimSpace(version)
	if version == "" {
		return NameOnly{Name: name}
	}
	return NameVersion{Name: name, Version: version}
}

// Normalize re-canonicalizes an existing Spec. It is idempotent:
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(s Spec) Spec {
	switch v := s.(type) {
	case NameVersion:
		return FromPair(v.Name, v.Version)
	case NameOnly:
		return FromPair(v.Name, "")
	default:
		return NameOnly{}
	}
}

// NormalizeName extracts the package name from a location-like token.
//
// The rules are applied until the name stops changing:
//   - only the last whitespace-separated token is kept ("-e <url>")
//   - a trailing ".git" leaves the last path segment without the suffix
//   - an "#egg=" fragment names the package directly
//   - a ".git@<ref>" marker leaves the path segment before it
//
// A location carrying none of these markers is returned unchanged.
func NormalizeName(raw string) string {
	name := strings.TrimSpace(raw)
	for {
		next := normalizeStep(name)
		if next == name {
			return name
		}
		name = next
	}
}

func normalizeStep(s string) string {
	if fields := strings.Fields(s); len(fields) > 1 {
		return fields[len(fields)-1]
	}

	if strings.HasSuffix(s, vcsSuffix) {
		return strings.TrimSuffix(path.Base(s), vcsSuffix)
	}

	if i := strings.LastIndex(s, eggFragment); i >= 0 {
		egg := s[i+len(eggFragment):]
		// pip allows further fragment keys such as &subdirectory=.
		egg, _, _ = strings.Cut(egg, "&")
		return egg
	}

	if i := strings.Index(s, vcsRefMark); i >= 0 {
		return path.Base(s[:i])
	}

	return s
}

// MatchName reports whether two package names refer to the same package.
// Comparison uses Unicode case folding, and '-' and '_' are equivalent.
func MatchName(a, b string) bool {
	return foldName(a) == foldName(b)
}

func foldName(name string) string {
	// A Caser carries state, so each call gets its own.
	return cases.Fold().String(strings.ReplaceAll(name, "_", "-"))
}
