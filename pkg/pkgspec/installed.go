// SPDX-License-Identifier: MPL-2.0

package pkgspec

import (
	"bufio"
	"strings"
)

const (
	searchSeparator = " - "
	directRefMark   = " @ "
)

// Package is one (name, version) record from pip freeze output.
// Version is empty for records pip prints without a pin.
type Package struct {
	Name    string
	Version string
}

// Spec returns the package as a canonical Spec.
func (p Package) Spec() Spec {
	return FromPair(p.Name, p.Version)
}

// String returns the record in freeze syntax.
func (p Package) String() string {
	return p.Spec().String()
}

// ParseFreeze parses `pip freeze` output into ordered package records.
// Blank lines and comments are skipped. PEP 440 direct references
// ("name @ url") yield the name with no version.
func ParseFreeze(output string) []Package {
	var pkgs []Package
	sc := bufio.NewScanner(strings.NewReader(output))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if name, _, ok := strings.Cut(line, directRefMark); ok {
			pkgs = append(pkgs, Package{Name: NormalizeName(name)})
			continue
		}
		spec := Parse(line)
		pkg := Package{Name: spec.PackageName()}
		if nv, ok := spec.(NameVersion); ok {
			pkg.Version = nv.Version
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs
}

// Contains reports whether spec is present in installed.
// A NameVersion requires a record with an equivalent name and the exact
// version; a NameOnly requires only an equivalent name.
func Contains(installed []Package, spec Spec) bool {
	spec = Normalize(spec)
	for _, p := range installed {
		if !MatchName(p.Name, spec.PackageName()) {
			continue
		}
		nv, pinned := spec.(NameVersion)
		if !pinned || nv.Version == p.Version {
			return true
		}
	}
	return false
}

// Names returns the lower-cased names of the given records, in order.
func Names(pkgs []Package) []string {
	names := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		names = append(names, strings.ToLower(p.Name))
	}
	return names
}

// ParseSearch parses `pip search` output into a name to description map.
//
// Each line is split at the first " - ". A trailing "(version)" is removed
// from the name. Lines without the separator, such as wrapped description
// text, are dropped. When a name appears more than once the last
// description wins.
func ParseSearch(output string) map[string]string {
	results := make(map[string]string)
	sc := bufio.NewScanner(strings.NewReader(output))
	for sc.Scan() {
		name, desc, ok := strings.Cut(sc.Text(), searchSeparator)
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if i := strings.LastIndex(name, " ("); i > 0 && strings.HasSuffix(name, ")") {
			name = strings.TrimSpace(name[:i])
		}
		results[name] = strings.TrimSpace(desc)
	}
	return results
}
