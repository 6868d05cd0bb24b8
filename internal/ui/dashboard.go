package ui

import (
	"database/sql"
	"log/slog"

	"finboard/internal/i18n"
	"finboard/internal/model"
	"finboard/internal/report"
	"finboard/internal/table"
)

// dashboard owns the three tables of one language. The monthly and
// category tables are derived from the filtered transactions.
type dashboard struct {
	conn     *sql.DB
	logger   *slog.Logger
	cat      *i18n.Catalog
	currency string
	views    map[string]*TableView
	kpi      *kpiBar
	data     model.Dataset
	stop     []func()
}

type dashboardConfig struct {
	conn            *sql.DB
	logger          *slog.Logger
	currency        string
	pageSize        int
	pageIncrement   int
	scrollThreshold int
	filters         table.FilterStore
	store           table.PersistenceStore
}

func newDashboard(cfg dashboardConfig, cat *i18n.Catalog) *dashboard {
	d := &dashboard{
		conn:     cfg.conn,
		logger:   cfg.logger,
		cat:      cat,
		currency: cfg.currency,
		views:    make(map[string]*TableView, len(tableIDs)),
		kpi:      newKPIBar(cat, cfg.currency),
	}

	columns := map[string][]table.Column{
		TableTransactions: transactionColumns(cat, cfg.currency, nil),
		TableMonthly:      monthlyColumns(cat, cfg.currency),
		TableCategories:   categoryColumns(cat, cfg.currency),
	}
	for _, id := range tableIDs {
		opts := table.Options{
			ID:              id,
			SortStateKey:    id,
			InitialRowCount: cfg.pageSize,
			RowIncrement:    cfg.pageIncrement,
			ScrollThreshold: cfg.scrollThreshold,
			Filters:         cfg.filters,
			Persistence:     cfg.store,
			RowRenderer:     renderCells,
			FooterRenderer:  footerRenderer(cat, cfg.currency, sumKeyFor(id)),
			Logger:          cfg.logger,
			Collation:       cat.Tag(),
			EmptyMessage:    cat.T("empty.no_data"),
		}
		d.views[id] = NewTableView(opts, columns[id], cat.T("empty.no_matches"))
		d.applyPrefs(id)
	}

	tx := d.views[TableTransactions].Engine()
	d.stop = append(d.stop,
		d.kpi.watch(tx),
		tx.Subscribe(func(ev table.Event) {
			if ev.Kind == table.EventFilterChanged {
				d.derive()
			}
		}),
	)
	return d
}

func (d *dashboard) view(id string) *TableView {
	return d.views[id]
}

// close detaches the dashboard from its engines.
func (d *dashboard) close() {
	for _, stop := range d.stop {
		stop()
	}
	d.stop = nil
}

func (d *dashboard) setData(data model.Dataset) {
	d.data = data
	tx := d.views[TableTransactions]
	tx.SetColumns(transactionColumns(d.cat, d.currency, data.Columns))
	d.applyPrefs(TableTransactions)
	tx.SetData(data.Rows)
	d.derive()
}

// derive recomputes the aggregate tables from the filtered transactions.
func (d *dashboard) derive() {
	rows := d.views[TableTransactions].Engine().Rows()
	d.views[TableMonthly].SetData(report.Monthly(rows))
	d.views[TableCategories].SetData(report.Categories(rows))
}

func (d *dashboard) applyPrefs(id string) {
	prefs, err := loadTablePrefs(d.conn, id)
	if err != nil {
		d.logger.Warn("ignoring table prefs", "table", id, "err", err)
		return
	}
	d.views[id].ApplyPrefs(prefs)
}

func (d *dashboard) savePrefs(id string) error {
	return saveTablePrefs(d.conn, id, d.views[id].Prefs())
}
