package utils

import (
	"fmt"
	"regexp"
	"strings"

	"gstack.dev/gstack/internal/errors"
)

// MaxBranchNameByteLength is the longest branch name accepted; git refs are
// limited to 255 bytes including "refs/heads/"
const MaxBranchNameByteLength = 244

var (
	// branchNameReplaceRegex matches runs of characters outside letters, digits, -, _, / and .
	branchNameReplaceRegex = regexp.MustCompile(`[^-_/.a-zA-Z0-9]+`)
	// branchNameIgnoreRegex matches trailing slashes and dots
	branchNameIgnoreRegex = regexp.MustCompile(`[/.]*$`)
	hyphenRunRegex        = regexp.MustCompile(`-+`)
	slashRunRegex         = regexp.MustCompile(`/+`)
)

// SanitizeBranchName turns name into something git accepts as a branch name.
// The result may be empty.
func SanitizeBranchName(name string) string {
	name = branchNameIgnoreRegex.ReplaceAllString(name, "")
	name = branchNameReplaceRegex.ReplaceAllString(name, "-")
	name = strings.ReplaceAll(name, "..", ".")
	name = slashRunRegex.ReplaceAllString(name, "/")
	name = hyphenRunRegex.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-/.")
	name = strings.TrimSuffix(name, ".lock")

	if len(name) > MaxBranchNameByteLength {
		name = name[:MaxBranchNameByteLength]
		name = strings.TrimRight(name, "-/.")
	}
	return name
}

// ValidateBranchName checks name against the rules of git check-ref-format
// for branches
func ValidateBranchName(name string) error {
	if reason := invalidBranchNameReason(name); reason != "" {
		if suggestion := SanitizeBranchName(name); suggestion != "" && suggestion != name {
			return fmt.Errorf("%q %s (try %q): %w", name, reason, suggestion, errors.ErrInvalidBranchName)
		}
		return fmt.Errorf("%q %s: %w", name, reason, errors.ErrInvalidBranchName)
	}
	return nil
}

func invalidBranchNameReason(name string) string {
	switch {
	case name == "":
		return "is empty"
	case name == "@" || name == "HEAD":
		return "is reserved"
	case len(name) > MaxBranchNameByteLength:
		return fmt.Sprintf("is longer than %d bytes", MaxBranchNameByteLength)
	case strings.HasPrefix(name, "-"):
		return "starts with '-'"
	case strings.HasSuffix(name, "/") || strings.HasSuffix(name, "."):
		return "ends with '/' or '.'"
	case strings.HasSuffix(name, ".lock"):
		return "ends with '.lock'"
	case strings.Contains(name, ".."), strings.Contains(name, "//"), strings.Contains(name, "@{"):
		return "contains '..', '//' or '@{'"
	}

	for _, r := range name {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(" ~^:?*[\\", r) {
			return fmt.Sprintf("contains %q", r)
		}
	}
	for _, component := range strings.Split(name, "/") {
		if component == "" || strings.HasPrefix(component, ".") {
			return "has a path component that is empty or starts with '.'"
		}
	}
	return ""
}
