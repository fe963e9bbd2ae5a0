// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package abrcc

import (
	"errors"
	"strings"
)

type multiError []error

func (me multiError) Error() string {
	var errstrings []string

	for _, err := range me {
		if err != nil {
			errstrings = append(errstrings, err.Error())
		}
	}

	return strings.Join(errstrings, "\n")
}

func (me multiError) Is(err error) bool {
	for _, e := range me {
		if errors.Is(e, err) {
			return true
		}
	}

	return false
}

// flattenErrs merges errs into one error, nil when all of them are nil.
func flattenErrs(errs []error) error {
	var out multiError
	for _, err := range errs {
		if err == nil {
			continue
		}
		var nested multiError
		if errors.As(err, &nested) {
			out = append(out, nested...)

			continue
		}
		out = append(out, err)
	}
	if len(out) == 0 {
		return nil
	}

	return out
}
