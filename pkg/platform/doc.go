// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// It knows where virtualenv places executables on each operating system
// and which file names Windows refuses to create.
package platform
