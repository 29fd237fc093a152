package term

// WorldFromTerminal converts a terminal size into board cells: each cell is
// two columns wide, and the header plus the board border eat rows and
// columns. Both results are at least 1.
func WorldFromTerminal(cols, rows, headerRows int) (width, height int) {
	innerCols := satSub(cols, 2)
	innerRows := satSub(satSub(rows, headerRows), 2)
	width = max(1, innerCols/2)
	height = max(1, innerRows)
	return width, height
}

func satSub(a, b int) int {
	if a < b {
		return 0
	}
	return a - b
}
