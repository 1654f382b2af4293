package composer

import "fmt"

// DegreeError is returned when the measured degrees of the individual
// transition constraint columns do not match the degrees declared by the
// arithmetization.
type DegreeError struct {
	Expected []int
	Actual   []int
}

// Error implements the error interface.
func (e *DegreeError) Error() string {
	return fmt.Sprintf("transition constraint degrees do not match: expected %v, actual %v", e.Expected, e.Actual)
}

// DomainSizeError is returned when the constraint evaluation domain is not
// the size the measured constraint degrees and trace length call for.
type DomainSizeError struct {
	Expected int
	Actual   int
}

// Error implements the error interface.
func (e *DomainSizeError) Error() string {
	return fmt.Sprintf("incorrect constraint evaluation domain size: expected %v, actual %v", e.Expected, e.Actual)
}

// ColumnDegreeError is returned when the post-division degree of an
// evaluation column does not match the composition degree.
type ColumnDegreeError struct {
	Column   int
	Expected int
	Actual   int
}

// Error implements the error interface.
func (e *ColumnDegreeError) Error() string {
	return fmt.Sprintf("post-division degree of column %v does not match: expected %v, actual %v", e.Column, e.Expected, e.Actual)
}

// UnfilledRowsError is returned when the table is consumed before every row
// has been written through its fragments.
type UnfilledRowsError struct {
	Rows []int
}

// Error implements the error interface.
func (e *UnfilledRowsError) Error() string {
	return fmt.Sprintf("evaluation table consumed with %v unfilled rows, first %v", len(e.Rows), e.Rows[0])
}
