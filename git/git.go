// Package git commits changes through the git CLI.
//
// The package is organized into focused modules:
//   - service.go: GitService struct and constructor
//   - commit.go: path-limited commits
//   - status.go: porcelain status and the working tree scanner
//   - backend.go: vcs.Backend adapter for one repository root
package git
