package templates

import (
	"time"

	"github.com/JonMunkholm/InventoryUI/internal/core"
)

// FormView is the data behind the create and edit forms.
type FormView struct {
	// Heading is "Add Item" or "Edit Item".
	Heading string
	Action  string
	Values  core.ItemForm
	Errors  core.ValidationErrors
	// Alert is shown above the form after a failed submit.
	Alert  *core.UserMessage
	Cancel string
}

type formField struct {
	key, label, kind, value, hint string
	required                      bool
}

func (f formField) id() string      { return "f-" + f.key }
func (f formField) errorID() string { return "e-" + f.key }

func (v FormView) fields() []formField {
	return []formField{
		{key: core.FieldIntPartNum, label: "Part Number", kind: "text", value: v.Values.IntPartNum, required: true},
		{key: core.FieldIntName, label: "Item Name", kind: "text", value: v.Values.IntName, required: true, hint: "2 to 50 characters"},
		{key: core.FieldQuantity, label: "Quantity", kind: "number", value: v.Values.Quantity, required: true},
		{key: core.FieldReOrder, label: "Reorder Quantity", kind: "number", value: v.Values.ReOrder},
		{key: core.FieldVendor, label: "Vendor", kind: "text", value: v.Values.Vendor},
		{key: core.FieldSloc, label: "Storage Location", kind: "text", value: v.Values.Sloc},
		{key: core.FieldQrCode, label: "QR Code", kind: "text", value: v.Values.QrCode},
		{key: core.FieldLabel, label: "Label", kind: "text", value: v.Values.Label},
	}
}

// DetailView is the data behind the single-item page.
type DetailView struct {
	Item  *core.Item
	Alert *core.UserMessage
}

type detailRow struct {
	label, value string
}

func detailRows(it *core.Item) []detailRow {
	return []detailRow{
		{"ID", it.IDString()},
		{"Quantity", orNA(it.Quantity, i64)},
		{"Reorder Quantity", orNA(it.ReOrder, i64)},
		{"Vendor", orNA(it.Vendor, str)},
		{"Storage Location", orNA(it.Sloc, str)},
		{"QR Code", orNA(it.QrCode, str)},
		{"Label", orNA(it.Label, str)},
		{"Active", orNA(it.Active, yesNo)},
		{"Created", orNA(it.CreatedAt, func(t time.Time) string { return t.Format("2006-01-02 15:04") })},
	}
}

// ConfirmView is the data behind a delete confirmation.
type ConfirmView struct {
	Message string
	Action  string
	// IDs are posted back as sel values for bulk deletes.
	IDs    []string
	Cancel string
}
