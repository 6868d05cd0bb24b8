package ui

import "finboard/internal/table"

type tableController interface {
	NextColumn()
	PrevColumn()
	JumpToColumn(number int) bool
	ActiveColumn() table.Column
	CycleSortActiveColumn() (table.SortInfo, bool)
	HideActiveColumn() bool
	ShowAllColumns()
	FilterBySelectedValue() bool
	ClearFilter() bool
	ClearAllFilters()
	TableMeta() string

	MoveDown()
	MoveUp()
	JumpToTop()
	JumpToBottom()
	HalfPageDown()
	HalfPageUp()
}
