package search

import (
	"errors"
	"strconv"

	"github.com/rubiojr/agentscope/pkg/core"
)

// DecodeCursor converts a pagination cursor into an offset. The empty cursor is
// offset 0. Anything but a base-10, non-negative integer fails with a
// *core.InvalidCursorError.
func DecodeCursor(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	offset, err := strconv.Atoi(cursor)
	if err != nil {
		return 0, &core.InvalidCursorError{Cursor: cursor, Err: err}
	}
	if offset < 0 {
		return 0, &core.InvalidCursorError{Cursor: cursor, Err: errors.New("negative offset")}
	}
	return offset, nil
}

// EncodeCursor returns the cursor addressing offset.
func EncodeCursor(offset int) string {
	return strconv.Itoa(offset)
}
