// pattern: Functional Core

package layout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBadPicture          = errors.New("invalid picture")
	ErrDuplicateElement    = errors.New("duplicate element")
	ErrDuplicatePanel      = errors.New("duplicate panel")
	ErrMissingMain         = errors.New("failed to create main element")
	ErrUnknownElement      = errors.New("unknown element")
	ErrInvalidName         = errors.New("invalid panel name")
	ErrFrozen              = errors.New("layout is frozen")
	ErrNoDataSource        = errors.New("no data source")
	ErrWildcardOutsideMain = errors.New("wildcard is only allowed in main")
	ErrNoHandleKey         = errors.New("renderer has no handle key")
	ErrPanelCycle          = errors.New("panel refers to itself")
)

// PictureError reports a malformed element picture such as "name:abc".
type PictureError struct {
	Picture string
	Err     error
}

func (e *PictureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid picture %q: %v", e.Picture, e.Err)
	}
	return fmt.Sprintf("invalid picture %q", e.Picture)
}

func (e *PictureError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrBadPicture}
	}
	return []error{ErrBadPicture, e.Err}
}

// DuplicateError reports an element name used twice within one handle.
type DuplicateError struct {
	Name   string
	Desc   string
	Layout string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate element definition %s = %q in %s", e.Name, e.Desc, e.Layout)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicateElement }

// PanelCycleError reports a panel whose descriptor reaches the panel
// itself again. Path lists the panels from the first to the repeated one.
type PanelCycleError struct {
	Path   []string
	Layout string
}

func (e *PanelCycleError) Error() string {
	return fmt.Sprintf("panel cycle %s in %s", strings.Join(e.Path, " -> "), e.Layout)
}

func (e *PanelCycleError) Unwrap() error { return ErrPanelCycle }

// UnknownElementError reports a reference to an element that the layout
// does not define. Suggestion holds the closest known name, if any.
type UnknownElementError struct {
	Name       string
	Layout     string
	Suggestion string
}

func (e *UnknownElementError) Error() string {
	msg := fmt.Sprintf("%s has no element %q", e.Layout, e.Name)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

func (e *UnknownElementError) Unwrap() error { return ErrUnknownElement }
