package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If no non-nil error is provided, nil is returned. If only one non-nil error
// is provided, it is returned as it is. Multi errors are flattened so that
// the result never nests another multi error.
func Append(errs ...error) error {
	var res multiErr
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if m, ok := e.(multiErr); ok {
			res = append(res, m...)
		} else {
			res = append(res, e)
		}
	}
	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

// multiErr is an error that represents a collection of errors that happened
// independently of each other, for example validation of several fields or
// migration of several documents.
type multiErr []error

func (errs multiErr) Error() string {
	if len(errs) == 1 {
		return fmt.Sprintf("1 error occurred:\n\t* %s\n\n", errs[0])
	}

	points := make([]string, len(errs))
	for i, err := range errs {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf(
		"%d errors occurred:\n\t%s\n\n",
		len(errs), strings.Join(points, "\n\t"))
}

// Unpack returns all errors clubbed by this instance.
func (errs multiErr) Unpack() []error {
	return errs
}

// unpacker is implemented by errors that represent more than one failure.
type unpacker interface {
	Unpack() []error
}

// Unpack returns the list of errors clubbed by given error. A single error is
// returned as a one element list. Nil error returns nil.
func Unpack(err error) []error {
	if isNilErr(err) {
		return nil
	}
	if u, ok := err.(unpacker); ok {
		return u.Unpack()
	}
	return []error{err}
}
