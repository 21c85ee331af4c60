package web

import (
	"net/http"

	"github.com/JonMunkholm/InventoryUI/internal/core"
	"github.com/JonMunkholm/InventoryUI/internal/logging"
	"github.com/JonMunkholm/InventoryUI/internal/notify"
	"github.com/JonMunkholm/InventoryUI/internal/table"
	"github.com/JonMunkholm/InventoryUI/internal/web/templates"
)

var pageSizeChoices = []int{5, 10, 25, 50, 100}

// inventoryColumns is the column set of the items table.
func inventoryColumns() []table.Column {
	return []table.Column{
		table.Def{Field: core.FieldIntPartNum, Label: "Part Number", CanSort: true, Cell: templates.PartBadge},
		table.Def{Field: core.FieldIntName, Label: "Item Name", CanSort: true, CanFilter: true},
		table.Def{Field: core.FieldQuantity, Label: "Quantity", CanSort: true},
		table.Def{Field: core.FieldSloc, Label: "Storage Location", CanSort: true},
		table.Def{Field: core.FieldReOrder, Label: "Reorder Quantity", CanSort: true},
		table.ActionsColumn{
			IDField: core.FieldID,
			Actions: []table.Action{
				{Label: "View", Href: func(id string) string { return "/inventory/" + id }},
				{Label: "Edit", Href: func(id string) string { return "/inventory/" + id + "/edit" }},
				{Label: "Delete", Href: func(id string) string { return "/inventory/" + id + "/delete" }, Variant: "danger"},
			},
		},
	}
}

func (s *Server) pageSizes() []int {
	var out []int
	for _, n := range pageSizeChoices {
		if s.cfg.Table.MaxPageSize <= 0 || n <= s.cfg.Table.MaxPageSize {
			out = append(out, n)
		}
	}
	return out
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/inventory", http.StatusFound)
}

// handleInventory renders the items table. HTMX requests from the table's
// own links get just the table fragment.
func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view := templates.InventoryView{PageSizes: s.pageSizes()}
	status := http.StatusOK

	items, err := s.service.ListItems(ctx)
	if err != nil {
		msg := core.MapError(err)
		view.LoadError = &msg
		s.notify(r, notify.Error("Load Failed", msg.Message))
		logging.FromContext(ctx).Warn("inventory load failed", "error", err, "status", core.StatusOf(err))
		if !isHTMX(r) {
			status = statusFor(err)
		}
	}

	if wantsJSON(r) {
		if err != nil {
			respondErrorJSON(w, *view.LoadError, statusFor(err))
			return
		}
		writeJSON(w, http.StatusOK, items)
		return
	}

	defaults := table.State{Page: 1, PageSize: s.cfg.Table.PageSize}
	state := table.ParseState(r.URL.Query(), defaults, s.cfg.Table.MaxPageSize)
	view.Table = table.New(core.Records(items), inventoryColumns(), table.WithState(state), table.WithIDField(core.FieldID))

	if isHTMX(r) {
		s.renderFragment(w, r, status, templates.InventoryTable(view))
		return
	}
	s.render(w, r, status, templates.Page{Title: "Items", Nav: templates.NavInventory}, templates.InventoryPage(view))
}

func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, templates.Page{Title: "Help", Nav: templates.NavHelp}, templates.HelpPage(templates.DefaultFAQ))
}

// handleHealth reports liveness plus import slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"imports":  s.service.ImportLimiter().Status(),
		"sessions": s.notes.Sessions(),
	})
}

// handleDismiss removes one notification from the session's queue.
func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	s.notes.Dismiss(core.SessionFromContext(r.Context()), chiParam(r, "id"))
	if isHTMX(r) {
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, localReferer(r, "/inventory"), http.StatusSeeOther)
}
