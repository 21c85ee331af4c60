package templates

import (
	"github.com/JonMunkholm/InventoryUI/internal/core"
	"github.com/JonMunkholm/InventoryUI/internal/table"
)

// InventoryTableID is the element the inventory table fragment replaces.
const InventoryTableID = "inventory-table"

// InventoryView is the data behind the inventory page.
type InventoryView struct {
	Table     *table.Table
	PageSizes []int
	// LoadError replaces the table when the item list could not be fetched.
	LoadError *core.UserMessage
}

func (v InventoryView) tableOptions() TableOptions {
	return TableOptions{
		ID:           InventoryTableID,
		BasePath:     "/inventory",
		SelectAction: "/inventory/delete-selected",
		PageSizes:    v.PageSizes,
		EmptyText:    "No items found.",
	}
}
