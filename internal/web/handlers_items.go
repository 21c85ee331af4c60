package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/InventoryUI/internal/core"
	"github.com/JonMunkholm/InventoryUI/internal/logging"
	"github.com/JonMunkholm/InventoryUI/internal/notify"
	"github.com/JonMunkholm/InventoryUI/internal/table"
	"github.com/JonMunkholm/InventoryUI/internal/web/templates"
)

func chiParam(r *http.Request, key string) string {
	return strings.TrimSpace(chi.URLParam(r, key))
}

func (s *Server) handleNewItem(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, templates.Page{Title: "Add Item", Nav: templates.NavAdd}, templates.ItemFormPage(templates.FormView{
		Heading: "Add Item",
		Action:  "/inventory/new",
		Cancel:  "/inventory",
	}))
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", core.ErrInvalidForm, err), http.StatusBadRequest)
		return
	}

	form := s.service.CreateForm(core.ParseItemForm(r.PostForm))
	if _, err := form.Submit(r.Context()); err != nil {
		view := templates.FormView{Heading: "Add Item", Action: "/inventory/new", Cancel: "/inventory"}
		s.formFailed(w, r, view, form, err, "Creation Failed", "Failed to create the item. Status: %s. Please try again.")
		return
	}

	// The create page comes back blank, ready for the next item.
	s.notify(r, notify.Success("Item Created", "The item has been successfully created."))
	redirect(w, r, "/inventory/new")
}

// formFailed re-renders a form after a failed submit. Field problems stay
// inline; backend failures also get a notification and an alert.
func (s *Server) formFailed(w http.ResponseWriter, r *http.Request, view templates.FormView, form *core.ItemFormHandle, err error, title, bodyFormat string) {
	view.Values = form.Values()
	view.Errors = form.Errors()

	var ve core.ValidationErrors
	switch {
	case errors.Is(err, core.ErrInvalidForm), errors.As(err, &ve):
		s.notify(r, notify.Error("Invalid Form Values", "Please ensure all required fields are filled correctly."))
	default:
		s.notify(r, notify.Error(title, fmt.Sprintf(bodyFormat, core.StatusOf(err))))
		msg := core.MapError(err)
		view.Alert = &msg
		logging.FromContext(r.Context()).Warn("item save failed", "error", err)
	}

	nav := ""
	if view.Heading == "Add Item" {
		nav = templates.NavAdd
	}
	s.render(w, r, statusFor(err), templates.Page{Title: view.Heading, Nav: nav}, templates.ItemFormPage(view))
}

// loadFailed renders the item page's error state for an item that could
// not be loaded.
func (s *Server) loadFailed(w http.ResponseWriter, r *http.Request, err error) {
	msg := core.MapError(err)
	if errors.Is(err, core.ErrInvalidID) {
		s.notify(r, notify.Error("Invalid ID", "The provided item ID is invalid."))
	} else {
		s.notify(r, notify.Error("Load Failed", msg.Message))
	}
	logging.FromContext(r.Context()).Warn("item load failed", "id", chiParam(r, "id"), "error", err)

	if wantsJSON(r) {
		respondErrorJSON(w, msg, statusFor(err))
		return
	}
	s.render(w, r, statusFor(err), templates.Page{Title: "Item"}, templates.ItemDetailPage(templates.DetailView{Alert: &msg}))
}

func (s *Server) handleViewItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.service.GetItem(r.Context(), chiParam(r, "id"))
	if err != nil {
		s.loadFailed(w, r, err)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, item)
		return
	}
	s.render(w, r, http.StatusOK, templates.Page{Title: "Item"}, templates.ItemDetailPage(templates.DetailView{Item: item}))
}

func editView(id string) templates.FormView {
	return templates.FormView{
		Heading: "Edit Item",
		Action:  "/inventory/" + id + "/edit",
		Cancel:  "/inventory/" + id,
	}
}

func (s *Server) handleEditItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.service.GetItem(r.Context(), chiParam(r, "id"))
	if err != nil {
		s.loadFailed(w, r, err)
		return
	}
	view := editView(item.IDString())
	view.Values = core.FormFromItem(*item)
	s.render(w, r, http.StatusOK, templates.Page{Title: "Edit Item"}, templates.ItemFormPage(view))
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(chiParam(r, "id"))
	if err != nil {
		s.loadFailed(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", core.ErrInvalidForm, err), http.StatusBadRequest)
		return
	}

	form := s.service.EditForm(id, core.ParseItemForm(r.PostForm))
	item, err := form.Submit(r.Context())
	if err != nil {
		view := editView(fmt.Sprint(id))
		s.formFailed(w, r, view, form, err, "Update Failed", "Failed to update the item. Status: %s. Please try again.")
		return
	}

	s.notify(r, notify.Success("Update Successful", "The item has been successfully updated."))
	redirect(w, r, "/inventory/"+item.IDString())
}

func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	item, err := s.service.GetItem(r.Context(), chiParam(r, "id"))
	if err != nil {
		s.loadFailed(w, r, err)
		return
	}
	name := "this item"
	if item.IntName != nil && *item.IntName != "" {
		name = `"` + *item.IntName + `"`
	}
	s.render(w, r, http.StatusOK, templates.Page{Title: "Delete Item"}, templates.ConfirmDeletePage(templates.ConfirmView{
		Message: fmt.Sprintf("Delete %s? This cannot be undone.", name),
		Action:  "/inventory/" + item.IDString() + "/delete",
		Cancel:  "/inventory/" + item.IDString(),
	}))
}

// handleDeleteItem deletes one item once the confirmation form was posted.
func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	raw := chiParam(r, "id")
	if r.PostFormValue("confirm") != "yes" {
		redirect(w, r, "/inventory/"+raw+"/delete")
		return
	}

	err := s.service.DeleteItem(r.Context(), raw)
	switch {
	case errors.Is(err, core.ErrInvalidID):
		s.notify(r, notify.Error("Invalid ID", "The provided item ID is invalid."))
	case err != nil:
		s.notify(r, notify.Error("Delete Failed", fmt.Sprintf("Failed to delete the item. Status: %s. Please try again.", core.StatusOf(err))))
		logging.FromContext(r.Context()).Warn("item delete failed", "id", raw, "error", err)
	default:
		s.notify(r, notify.Success("Delete Successful", "The item has been successfully deleted."))
	}
	redirect(w, r, "/inventory")
}

// handleDeleteSelected asks for confirmation, then deletes every selected
// item. Failures are counted, not retried.
func (s *Server) handleDeleteSelected(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	ids := table.ParseState(r.PostForm, table.State{}, 0).Selected
	if len(ids) == 0 {
		s.notify(r, notify.Info("No Items Selected", "Select at least one item to delete."))
		redirect(w, r, "/inventory")
		return
	}

	if r.PostForm.Get("confirm") != "yes" {
		s.render(w, r, http.StatusOK, templates.Page{Title: "Delete Items"}, templates.ConfirmDeletePage(templates.ConfirmView{
			Message: fmt.Sprintf("Delete %d selected item(s)? This cannot be undone.", len(ids)),
			Action:  "/inventory/delete-selected",
			IDs:     ids,
			Cancel:  "/inventory",
		}))
		return
	}

	sum := s.service.DeleteItems(r.Context(), ids)
	if len(sum.Failed) == 0 {
		s.notify(r, notify.Success("Delete Successful", fmt.Sprintf("Deleted %d item(s).", len(sum.Deleted))))
	} else {
		s.notify(r, notify.Error("Delete Failed", fmt.Sprintf("Failed to delete %d of %d item(s). Status: %s.",
			len(sum.Failed), len(ids), core.StatusOf(sum.Failed[0].Err))))
	}
	redirect(w, r, "/inventory")
}
