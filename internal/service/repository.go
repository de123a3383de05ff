package service

import (
	"strings"

	"github.com/soba-dev/soba/pkg/errors"
)

// splitRepository parses the "owner/name" shorthand used throughout config
// and the CLI into its two parts.
func splitRepository(repository string) (owner, name string, err error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.NewValidationError("repository must be in 'owner/name' format: " + repository)
	}
	return parts[0], parts[1], nil
}
