package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"finboard/internal/table"
	"finboard/internal/util"
)

// TableView is the terminal surface of a table.Engine. The engine pushes
// rendered rows into it; the view owns the cursor, the scroll offset and
// column visibility, and reports its remaining scroll distance back to the
// engine so the row window grows as the cursor approaches the end.
type TableView struct {
	engine  *table.Engine
	columns []table.Column
	hidden  map[string]bool
	data    []table.Row

	rows      []table.RenderedRow
	empty     string
	footer    string
	noMatches string

	cursor         int
	offset         int
	viewportHeight int
	activeColumn   int
}

var (
	_ table.Viewport  = (*TableView)(nil)
	_ tableController = (*TableView)(nil)
)

// NewTableView creates a view and the engine rendering into it.
// opts.Viewport is overwritten.
func NewTableView(opts table.Options, columns []table.Column, noMatches string) *TableView {
	v := &TableView{
		columns:   columns,
		hidden:    make(map[string]bool),
		noMatches: noMatches,
	}
	opts.Viewport = v
	v.engine = table.NewEngine(opts)
	v.engine.Render(nil, columns)
	return v
}

// Engine returns the engine behind the view.
func (v *TableView) Engine() *table.Engine {
	return v.engine
}

// SetData renders a new dataset from the first window.
func (v *TableView) SetData(rows []table.Row) {
	v.data = rows
	v.engine.Render(rows, v.columns)
}

// SetColumns replaces the column definitions used by the next SetData.
func (v *TableView) SetColumns(columns []table.Column) {
	v.columns = columns
	v.ensureVisibleActiveColumn()
}

// Columns returns the column definitions.
func (v *TableView) Columns() []table.Column {
	return v.columns
}

// Replace implements table.Viewport. A full render starts at the top.
func (v *TableView) Replace(rows []table.RenderedRow) {
	v.rows = rows
	v.empty = ""
	v.cursor = 0
	v.offset = 0
}

// Append implements table.Viewport.
func (v *TableView) Append(rows []table.RenderedRow) {
	v.rows = append(v.rows, rows...)
}

// Empty implements table.Viewport.
func (v *TableView) Empty(message string) {
	v.rows = nil
	v.empty = message
	v.cursor = 0
	v.offset = 0
}

// SetFooter implements table.Viewport.
func (v *TableView) SetFooter(footer string) {
	v.footer = footer
}

// SelectedRow returns the row under the cursor.
func (v *TableView) SelectedRow() (table.Row, bool) {
	if len(v.rows) == 0 {
		return nil, false
	}
	return v.rows[v.cursor].Row, true
}

// Rendered returns the number of rows currently in the view.
func (v *TableView) Rendered() int {
	return len(v.rows)
}

// Cursor returns the selected row index.
func (v *TableView) Cursor() int {
	return v.cursor
}

func (v *TableView) height() int {
	if v.viewportHeight <= 0 {
		return 10
	}
	return v.viewportHeight
}

// remaining is how many rendered rows lie below the visible page.
func (v *TableView) remaining() int {
	return len(v.rows) - (v.offset + v.height())
}

func (v *TableView) grow() {
	v.engine.HandleScroll(v.remaining())
}

func (v *TableView) ApplyPrefs(prefs TablePrefs) {
	v.hidden = make(map[string]bool, len(prefs.HiddenColumns))
	for _, c := range prefs.HiddenColumns {
		v.hidden[c] = true
	}
	if prefs.ActiveColumn != "" {
		for i, c := range v.columns {
			if c.Key == prefs.ActiveColumn {
				v.activeColumn = i
				break
			}
		}
	}
	v.ensureVisibleActiveColumn()
}

func (v *TableView) Prefs() TablePrefs {
	var hidden []string
	for _, c := range v.columns {
		if v.hidden[c.Key] {
			hidden = append(hidden, c.Key)
		}
	}
	return TablePrefs{
		HiddenColumns: hidden,
		ActiveColumn:  v.columns[v.activeColumn].Key,
	}
}

func (v *TableView) visibleColumnIndexes() []int {
	var idxs []int
	for i, c := range v.columns {
		if !v.hidden[c.Key] {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

func (v *TableView) ensureVisibleActiveColumn() {
	if v.activeColumn >= len(v.columns) {
		v.activeColumn = 0
	}
	if !v.hidden[v.columns[v.activeColumn].Key] {
		return
	}
	for i, c := range v.columns {
		if !v.hidden[c.Key] {
			v.activeColumn = i
			return
		}
	}
	delete(v.hidden, v.columns[0].Key)
	v.activeColumn = 0
}

func (v *TableView) ActiveColumn() table.Column {
	return v.columns[v.activeColumn]
}

func (v *TableView) NextColumn() {
	start := v.activeColumn
	for {
		v.activeColumn = (v.activeColumn + 1) % len(v.columns)
		if !v.hidden[v.columns[v.activeColumn].Key] || v.activeColumn == start {
			return
		}
	}
}

func (v *TableView) PrevColumn() {
	start := v.activeColumn
	for {
		v.activeColumn--
		if v.activeColumn < 0 {
			v.activeColumn = len(v.columns) - 1
		}
		if !v.hidden[v.columns[v.activeColumn].Key] || v.activeColumn == start {
			return
		}
	}
}

func (v *TableView) JumpToColumn(number int) bool {
	if number < 1 || number > len(v.columns) {
		return false
	}
	idx := number - 1
	if v.hidden[v.columns[idx].Key] {
		return false
	}
	v.activeColumn = idx
	return true
}

// CycleSortActiveColumn advances the active column through desc, asc and
// unsorted. It reports the new sort position, or false once the column is
// no longer sorted.
func (v *TableView) CycleSortActiveColumn() (table.SortInfo, bool) {
	key := v.ActiveColumn().Key
	v.engine.Sort(key)
	return v.engine.SortInfo(key)
}

func (v *TableView) HideActiveColumn() bool {
	if len(v.visibleColumnIndexes()) <= 1 {
		return false
	}
	v.hidden[v.columns[v.activeColumn].Key] = true
	v.ensureVisibleActiveColumn()
	return true
}

func (v *TableView) ShowAllColumns() {
	v.hidden = make(map[string]bool)
}

// FilterBySelectedValue filters the active column by the raw value of the
// selected cell.
func (v *TableView) FilterBySelectedValue() bool {
	row, ok := v.SelectedRow()
	col := v.ActiveColumn()
	if !ok || !col.Searchable {
		return false
	}
	value := strings.TrimSpace(table.CellString(row[col.Key]))
	if value == "" {
		return false
	}
	v.engine.SetPendingFilter(col.Key, value)
	v.engine.ApplyFilter(col.Key)
	return true
}

func (v *TableView) ClearFilter() bool {
	key := v.ActiveColumn().Key
	if v.engine.FilterValue(key, false) == "" {
		return false
	}
	v.engine.ClearFilter(key)
	return true
}

func (v *TableView) ClearAllFilters() {
	v.engine.ClearAllFilters()
}

func (v *TableView) TableMeta() string {
	parts := []string{"col " + formatHeaderLabel(v.ActiveColumn().Label)}
	if state := v.engine.SortState(); len(state) > 0 {
		parts = append(parts, "sort "+state.String())
	}
	filters := v.engine.Filters()
	if len(filters) > 0 {
		var fs []string
		for _, c := range v.columns {
			if val, ok := filters[c.Key]; ok {
				fs = append(fs, fmt.Sprintf("%s~%q", c.Key, val))
			}
		}
		parts = append(parts, "filter "+strings.Join(fs, " "))
	}
	return strings.Join(parts, "  ·  ")
}

func formatHeaderLabel(label string) string {
	return strings.ToUpper(label)
}

func (v *TableView) headerLabel(col table.Column) string {
	label := formatHeaderLabel(col.Label)
	if info, ok := v.engine.SortInfo(col.Key); ok {
		label += " " + SortBadgeStyle.Render(fmt.Sprintf("%s%d", info.Direction.Arrow(), info.Priority))
	}
	if _, ok := v.engine.Filters()[col.Key]; ok {
		label += " " + FilterMarkStyle.Render("≈")
	}
	return label
}

func numericColumn(col table.Column) bool {
	switch col.Type {
	case table.TypeNumber, table.TypeCurrency, table.TypePercent:
		return true
	}
	return false
}

// View renders the table.
func (v *TableView) View(width, height int) string {
	status := v.statusLine()
	if len(v.rows) == 0 {
		msg := v.empty
		if msg == "" {
			msg = v.noMatches
		}
		body := EmptyStateStyle.Width(width).Height(max(0, height-1)).Render(msg)
		return lipgloss.JoinVertical(lipgloss.Left, body, status)
	}

	visible := v.visibleColumnIndexes()
	widths := make([]int, 0, len(visible))
	headers := make([]string, 0, len(visible))
	totalFixed := 0
	for _, idx := range visible {
		col := v.columns[idx]
		label := v.headerLabel(col)
		cellWidth := max(col.Width, lipgloss.Width(label)) + 2
		totalFixed += cellWidth
		widths = append(widths, cellWidth)
		headers = append(headers, label)
	}
	if extra := width - totalFixed; extra > 0 && len(widths) > 0 {
		widths[len(widths)-1] += extra
	}

	headerCells := make([]string, len(visible))
	for i, idx := range visible {
		style := TableHeaderStyle
		if idx == v.activeColumn {
			style = ActiveHeaderStyle
		}
		headerCells[i] = style.Width(widths[i]).Padding(0, 1).Render(headers[i])
	}
	header := lipgloss.JoinHorizontal(lipgloss.Left, headerCells...)
	divider := renderTableDivider(widths)

	visibleHeight := max(1, height-4)
	v.viewportHeight = visibleHeight
	if v.cursor >= v.offset+visibleHeight {
		v.offset = v.cursor - visibleHeight + 1
	}

	var lines []string
	for i := v.offset; i < len(v.rows) && i < v.offset+visibleHeight; i++ {
		style := NormalRowStyle
		if i == v.cursor {
			style = SelectedRowStyle
		}
		cells := make([]string, len(visible))
		for j, idx := range visible {
			text := ""
			if idx < len(v.rows[i].Cells) {
				text = v.rows[i].Cells[idx]
			}
			cells[j] = util.TruncateString(text, max(1, widths[j]-2))
		}
		lines = append(lines, renderTableRow(cells, widths, style, v.alignments(visible)))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, header, divider, strings.Join(lines, "\n"))
	spacerHeight := max(0, height-lipgloss.Height(content)-lipgloss.Height(status))
	spacer := lipgloss.NewStyle().Height(spacerHeight).Render("")
	return lipgloss.JoinVertical(lipgloss.Left, content, spacer, status)
}

func (v *TableView) alignments(visible []int) []lipgloss.Position {
	out := make([]lipgloss.Position, len(visible))
	for i, idx := range visible {
		out[i] = lipgloss.Left
		if numericColumn(v.columns[idx]) {
			out[i] = lipgloss.Right
		}
	}
	return out
}

func (v *TableView) statusLine() string {
	parts := []string{}
	if v.footer != "" {
		parts = append(parts, v.footer)
	}
	if len(v.rows) > 0 {
		parts = append(parts, fmt.Sprintf("row %d/%d", v.cursor+1, len(v.rows)))
	}
	parts = append(parts, v.TableMeta())
	return StatusBarStyle.Render(strings.Join(parts, "  ·  "))
}

func renderTableRow(cells []string, widths []int, style lipgloss.Style, align []lipgloss.Position) string {
	parts := make([]string, 0, len(cells))
	for i, cell := range cells {
		if i >= len(widths) {
			continue
		}
		s := style.Width(widths[i]).Padding(0, 1)
		if i < len(align) {
			s = s.Align(align[i])
		}
		parts = append(parts, s.Render(cell))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}

func renderTableDivider(widths []int) string {
	segments := make([]string, len(widths))
	for i, w := range widths {
		segments[i] = strings.Repeat("─", w)
	}
	return lipgloss.NewStyle().Foreground(ColorMuted).Render(strings.Join(segments, ""))
}

// MoveDown moves the cursor down.
func (v *TableView) MoveDown() {
	if v.cursor < len(v.rows)-1 {
		v.cursor++
		if v.cursor >= v.offset+v.height() {
			v.offset++
		}
	}
	v.grow()
}

// MoveUp moves the cursor up.
func (v *TableView) MoveUp() {
	if v.cursor > 0 {
		v.cursor--
		if v.cursor < v.offset {
			v.offset--
		}
	}
}

// JumpToTop jumps to the first item.
func (v *TableView) JumpToTop() {
	v.cursor = 0
	v.offset = 0
}

// JumpToBottom jumps to the last rendered item.
func (v *TableView) JumpToBottom() {
	if len(v.rows) == 0 {
		return
	}
	v.cursor = len(v.rows) - 1
	if v.cursor >= v.height() {
		v.offset = v.cursor - v.height() + 1
	}
	v.grow()
}

// HalfPageDown moves down half a page.
func (v *TableView) HalfPageDown() {
	if len(v.rows) == 0 {
		return
	}
	v.cursor = min(v.cursor+v.height()/2, len(v.rows)-1)
	if v.cursor >= v.offset+v.height() {
		v.offset = v.cursor - v.height() + 1
	}
	v.grow()
}

// HalfPageUp moves up half a page.
func (v *TableView) HalfPageUp() {
	v.cursor = max(0, v.cursor-v.height()/2)
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
}
