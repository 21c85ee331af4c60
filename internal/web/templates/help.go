package templates

// FAQ is one accordion entry on the help page.
type FAQ struct {
	Question string
	Answer   string
}

// DefaultFAQ is the help content.
var DefaultFAQ = []FAQ{
	{"Need Help?", "You can add items, receive items, and use build plans! For more help use the Help button in the navbar!"},
	{"How do I add an Item?", "To add an item, hit the add item button, you can manually input your data or import from an xlsx."},
	{"How do I receive items?", "You can manually input your data or you can import from an excel sheet, please note the names of the items must match from when you imported."},
	{"How do I access builds plans?", "you can select, create and view builds plans here."},
}
