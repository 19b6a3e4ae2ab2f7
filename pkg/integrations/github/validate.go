package github

import (
	"regexp"
	"strings"

	apperrors "github.com/matzehuels/releasestats/pkg/errors"
)

// Regex patterns for GitHub resource validation.
var (
	// GitHub usernames/orgs: 1-39 alphanumeric or hyphen, not starting with hyphen
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// GitHub repo names: 1-100 alphanumeric, hyphen, underscore, or dot
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// ValidateOwner validates a GitHub username or organization name.
func ValidateOwner(owner string) error {
	if owner == "" {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "owner is required")
	}
	if !validOwner.MatchString(owner) {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "invalid owner %q: must be 1-39 alphanumeric characters or hyphens, cannot start with hyphen", owner)
	}
	return nil
}

// ValidateRepo validates a GitHub repository name.
// The name also becomes part of local file names, so "." and ".." are rejected.
func ValidateRepo(repo string) error {
	if repo == "" {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "repo is required")
	}
	if !validRepo.MatchString(repo) {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "invalid repo %q: must be 1-100 alphanumeric characters, hyphens, underscores, or dots", repo)
	}
	if strings.Trim(repo, ".") == "" {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "invalid repo %q", repo)
	}
	return nil
}

// ValidateRepoRef validates both owner and repo parameters.
func ValidateRepoRef(owner, repo string) error {
	if err := ValidateOwner(owner); err != nil {
		return err
	}
	return ValidateRepo(repo)
}
