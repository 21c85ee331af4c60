package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "invalid id",
			err:         fmt.Errorf("load: %w", ErrInvalidID),
			wantCode:    "NF002",
			wantMessage: "Invalid Item!",
		},
		{
			name:        "404 status is not found",
			err:         fmt.Errorf("get item 9: %w", &StatusError{Method: "GET", Path: "/items/9", Code: 404}),
			wantCode:    "NF001",
			wantMessage: "Invalid Item!",
		},
		{
			name:        "non-2xx status carries code",
			err:         &StatusError{Method: "POST", Path: "/items", Code: 500},
			wantCode:    "HTTP001",
			wantMessage: "Request failed. Status: 500",
		},
		{
			name:        "connection refused has unknown status",
			err:         errors.New("dial tcp 127.0.0.1:5428: connect: connection refused"),
			wantCode:    "HTTP002",
			wantMessage: "Request failed. Status: unknown",
		},
		{
			name:        "invalid form values",
			err:         fmt.Errorf("%w: %w", ErrInvalidForm, ValidationErrors{"intName": "x"}),
			wantCode:    "VAL001",
			wantMessage: "Invalid Form Values",
		},
		{
			name:        "field validation",
			err:         ValidationErrors{"reOrder": "Reorder quantity must be 0 or higher."},
			wantCode:    "VAL002",
			wantMessage: "Some fields need attention",
		},
		{
			name:        "unsupported format",
			err:         fmt.Errorf("read stock.xls: %w", ErrUnsupportedFormat),
			wantCode:    "IMP002",
			wantMessage: "This spreadsheet format is not supported",
		},
		{
			name:        "unreadable spreadsheet",
			err:         fmt.Errorf("%w: zip: not a valid zip file", ErrUnreadableFile),
			wantCode:    "IMP001",
			wantMessage: "There was an error importing the file",
		},
		{
			name:        "too many imports",
			err:         ErrTooManyImports,
			wantCode:    "LIM001",
			wantMessage: "Too many imports in progress",
		},
		{
			name:        "deadline",
			err:         fmt.Errorf("bulk import: %w", context.DeadlineExceeded),
			wantCode:    "REQ002",
			wantMessage: "Request timed out",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantMessage, got.Message)
		})
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"typed", fmt.Errorf("wrap: %w", &StatusError{Code: 422}), "422"},
		{"message", errors.New("Failed to create item. Status: 503"), "503"},
		{"transport", errors.New("connection refused"), "unknown"},
		{"nil", nil, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(&StatusError{Method: "DELETE", Path: "/items/3", Code: 409})

	assert.Equal(t, "Request failed. Status: 409 (Code: HTTP001). Please try again.", result)
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", ErrNotFound, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUserFacing(tt.err))
		})
	}
}

func TestNewUserError(t *testing.T) {
	assert.Nil(t, NewUserError(nil))

	techErr := fmt.Errorf("get item 4: %w", ErrNotFound)
	userErr := NewUserError(techErr)
	require.NotNil(t, userErr)
	assert.Equal(t, "Invalid Item!", userErr.Error())
	assert.ErrorIs(t, userErr, ErrNotFound)
}
