/*
Package errors implements custom error interfaces for pkconv.

The idea is to reuse as many errors from this package as possible and define
custom package errors when absolutely necessary. Migration failures are
categorized by root errors declared here, so that a caller can tell a broken
step registry (ErrMigrationCycle, ErrDuplicateStepVersion) from a document
that cannot be migrated (ErrUnknownLegacyValue, ErrSchema).

If you want to register a custom error - use Register(code, description).
For reusing errors - use Errxxx.New and Errxxx.Newf.
The code is used as the process exit status by the command line tool.

There is also support for stacktraces. Please ensure you create the custom
error using ErrXyz.New("...") or errors.Wrap(err, "...") at the point of
creation to ensure we attach a stacktrace. If you wrap multiple times, we only
record the first wrap with the stacktrace.

Once you have an error, you can use `fmt.Printf/Sprintf` to get more context

	%s is just the error message
	%+v is the full stack trace
*/
package errors
