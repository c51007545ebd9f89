// SPDX-License-Identifier: MPL-2.0

// Package issue turns venvctl failures into actionable messages.
//
// ActionableError names the failed operation and the environment or package
// it touched, plus remediation hints. Issue holds the longer Markdown page the CLI
// renders with glamour for each failure category.
package issue
