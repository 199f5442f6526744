package docbase

import "fmt"

// NuggetError is returned when a nugget's span does not fit its document.
type NuggetError struct {
	DocumentName string
	StartChar    int
	EndChar      int
	Err          error
}

func (e *NuggetError) Error() string {
	return fmt.Sprintf("invalid nugget [%d, %d) in document %q: %v", e.StartChar, e.EndChar, e.DocumentName, e.Err)
}

func (e *NuggetError) Unwrap() error {
	return e.Err
}
