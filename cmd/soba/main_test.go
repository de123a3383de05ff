package main

import (
	"testing"

	"github.com/soba-dev/soba/pkg/errors"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "validation error exits 2",
			err:  errors.NewValidationError("workflow.interval must be at least 10 seconds"),
			want: 2,
		},
		{
			name: "wrapped validation error still exits 2",
			err:  errors.Wrap(errors.NewValidationError("bad config"), "failed to load config"),
			want: 2,
		},
		{
			name: "internal error exits 1",
			err:  errors.NewInternalError("something broke"),
			want: 1,
		},
		{
			name: "not-found error exits 1",
			err:  errors.NewNotFoundError("config file not found"),
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}
