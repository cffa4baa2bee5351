package grid

import "wordlewatch/internal/types"

// IsSolved строка решена, когда все плитки зеленые
func IsSolved(state types.RowState, columns int) bool {
	return columns > 0 && state.FullMatch == columns
}
