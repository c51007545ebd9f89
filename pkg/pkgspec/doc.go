// SPDX-License-Identifier: MPL-2.0

// Package pkgspec canonicalizes pip package specifications.
//
// pip accepts packages in many surface forms: bare names, pinned versions,
// VCS URLs with optional @ref and #egg= fragments, editable directives and
// requirements files. This package reduces all of them to a Spec, which is
// either a NameOnly or a NameVersion, and answers "is this spec present in
// an installed set" using pip's name-equivalence rules.
//
// The package also parses the textual output of `pip freeze` and
// `pip search`.
package pkgspec
