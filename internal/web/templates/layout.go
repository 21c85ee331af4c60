package templates

import "github.com/JonMunkholm/InventoryUI/internal/notify"

// Nav sections.
const (
	NavInventory = "inventory"
	NavAdd       = "add"
	NavImport    = "import"
	NavHelp      = "help"
)

// Page carries what every full page renders around its body.
type Page struct {
	Title  string
	Nav    string
	Toasts []notify.Notification
}

func (p Page) documentTitle() string {
	if p.Title == "" {
		return "Inventory"
	}
	return p.Title + " · Inventory"
}

type navLink struct {
	key, label, href string
}

var navLinks = []navLink{
	{NavInventory, "Inventory", "/inventory"},
	{NavAdd, "Add Item", "/inventory/new"},
	{NavImport, "Import", "/inventory/import"},
	{NavHelp, "Help", "/help"},
}
