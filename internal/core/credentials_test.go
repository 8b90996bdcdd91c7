package core

import (
	"errors"
	"testing"
)

func TestValidateNewAccount(t *testing.T) {
	cases := []struct {
		user, pw, confirm string
		want              error
	}{
		{"bob", "pw", "pw", nil},
		{"  ", "pw", "pw", ErrEmptyUsername},
		{"bob", "", "", ErrEmptyPassword},
		{"bob", "pw", "pW", ErrPasswordMismatch},
	}
	for _, tc := range cases {
		if err := ValidateNewAccount(tc.user, tc.pw, tc.confirm); !errors.Is(err, tc.want) {
			t.Errorf("ValidateNewAccount(%q, %q, %q) = %v, want %v", tc.user, tc.pw, tc.confirm, err, tc.want)
		}
	}
}
