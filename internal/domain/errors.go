package domain

import "fmt"

// DataLoadError reports a missing or malformed input file. It is fatal at startup.
type DataLoadError struct {
	Path string
	Err  error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// NewDataLoadError wraps err with the path of the input that failed.
func NewDataLoadError(path string, err error) *DataLoadError {
	return &DataLoadError{Path: path, Err: err}
}
