package core

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ItemForm holds item fields as submitted by an HTML form.
type ItemForm struct {
	IntPartNum string
	IntName    string
	ReOrder    string
	Quantity   string
	Sloc       string
	Vendor     string
	QrCode     string
	Label      string
	Active     bool
}

// ParseItemForm reads an ItemForm from posted form values.
func ParseItemForm(v url.Values) ItemForm {
	get := func(k string) string { return strings.TrimSpace(v.Get(k)) }
	active, _ := strconv.ParseBool(get(FieldActive))
	if get(FieldActive) == "on" {
		active = true
	}
	return ItemForm{
		IntPartNum: get(FieldIntPartNum),
		IntName:    get(FieldIntName),
		ReOrder:    get(FieldReOrder),
		Quantity:   get(FieldQuantity),
		Sloc:       get(FieldSloc),
		Vendor:     get(FieldVendor),
		QrCode:     get(FieldQrCode),
		Label:      get(FieldLabel),
		Active:     active,
	}
}

// FormFromItem pre-fills a form from an existing item.
func FormFromItem(it Item) ItemForm {
	str := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	num := func(p *int64) string {
		if p == nil {
			return ""
		}
		return strconv.FormatInt(*p, 10)
	}
	return ItemForm{
		IntPartNum: str(it.IntPartNum),
		IntName:    str(it.IntName),
		ReOrder:    num(it.ReOrder),
		Quantity:   num(it.Quantity),
		Sloc:       str(it.Sloc),
		Vendor:     str(it.Vendor),
		QrCode:     str(it.QrCode),
		Label:      str(it.Label),
		Active:     it.Active != nil && *it.Active,
	}
}

// ValidationErrors maps a field key to its inline message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + v[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// itemInput is the validated shape of an item.
type itemInput struct {
	IntPartNum string `json:"intPartNum" validate:"max=64"`
	IntName    string `json:"intName" validate:"required,min=2,max=50"`
	ReOrder    *int64 `json:"reOrder" validate:"omitempty,min=0"`
	Quantity   *int64 `json:"quantity" validate:"required,min=0"`
	Sloc       string `json:"sloc" validate:"max=32"`
	Vendor     string `json:"vendor" validate:"max=100"`
	QrCode     string `json:"QrCode" validate:"max=256"`
	Label      string `json:"Label" validate:"max=256"`
}

var fieldMessages = map[string]string{
	"intPartNum.max":    "Part number must not exceed 64 characters.",
	"intName.required":  "Item name must be at least 2 characters.",
	"intName.min":       "Item name must be at least 2 characters.",
	"intName.max":       "Item name must not exceed 50 characters.",
	"reOrder.min":       "Reorder quantity must be 0 or higher.",
	"quantity.required": "Quantity is required.",
	"quantity.min":      "Quantity must be at least 0.",
	"sloc.max":          "Storage location must not exceed 32 characters.",
	"vendor.max":        "Vendor must not exceed 100 characters.",
	"QrCode.max":        "QR code must not exceed 256 characters.",
	"Label.max":         "Label must not exceed 256 characters.",
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func itemValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

func validateInput(in itemInput, errs ValidationErrors) {
	err := itemValidator().Struct(in)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return
	}
	for _, fe := range verrs {
		key := fe.Field()
		if _, seen := errs[key]; seen {
			continue
		}
		if msg, ok := fieldMessages[key+"."+fe.Tag()]; ok {
			errs[key] = msg
		} else {
			errs[key] = fmt.Sprintf("Failed %s validation.", fe.Tag())
		}
	}
}

func parseWhole(raw, label, key string, errs ValidationErrors) *int64 {
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		errs[key] = label + " must be a whole number."
		return nil
	}
	return &n
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Item validates the form and converts it to an Item. Field problems are
// returned as ValidationErrors.
func (f ItemForm) Item() (Item, error) {
	errs := ValidationErrors{}
	in := itemInput{
		IntPartNum: f.IntPartNum,
		IntName:    f.IntName,
		ReOrder:    parseWhole(f.ReOrder, "Reorder quantity", FieldReOrder, errs),
		Quantity:   parseWhole(f.Quantity, "Quantity", FieldQuantity, errs),
		Sloc:       f.Sloc,
		Vendor:     f.Vendor,
		QrCode:     f.QrCode,
		Label:      f.Label,
	}
	validateInput(in, errs)
	if len(errs) > 0 {
		return Item{}, errs
	}

	active := f.Active
	return Item{
		IntPartNum: optional(f.IntPartNum),
		IntName:    optional(f.IntName),
		ReOrder:    in.ReOrder,
		Quantity:   in.Quantity,
		Sloc:       optional(f.Sloc),
		Vendor:     optional(f.Vendor),
		QrCode:     optional(f.QrCode),
		Label:      optional(f.Label),
		Active:     &active,
	}, nil
}

// ValidateItem applies the form's field rules to an item decoded from
// elsewhere, such as a bulk-import row.
func ValidateItem(it Item) error {
	errs := ValidationErrors{}
	in := itemInput{
		IntPartNum: strVal(it.IntPartNum),
		IntName:    strVal(it.IntName),
		ReOrder:    it.ReOrder,
		Quantity:   it.Quantity,
		Sloc:       strVal(it.Sloc),
		Vendor:     strVal(it.Vendor),
		QrCode:     strVal(it.QrCode),
		Label:      strVal(it.Label),
	}
	validateInput(in, errs)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// checkSubmittable applies the submit gate: part number and name present and
// a positive quantity.
func (f ItemForm) checkSubmittable() ValidationErrors {
	errs := ValidationErrors{}
	if f.IntPartNum == "" {
		errs[FieldIntPartNum] = "Part number is required."
	}
	if f.IntName == "" {
		errs[FieldIntName] = "Item name must be at least 2 characters."
	}
	if q, err := strconv.ParseInt(f.Quantity, 10, 64); err == nil && q <= 0 {
		errs[FieldQuantity] = "Quantity must be greater than 0."
	} else if f.Quantity == "" {
		errs[FieldQuantity] = "Quantity is required."
	}
	return errs
}

// FormHandle is the narrow command surface an item form exposes to the page
// that composes it.
type FormHandle interface {
	Values() ItemForm
	Reset()
	Submit(ctx context.Context) (*Item, error)
}

// ItemFormHandle is the FormHandle for creating or editing one item.
type ItemFormHandle struct {
	values  ItemForm
	blank   ItemForm
	errors  ValidationErrors
	persist func(ctx context.Context, it Item) (*Item, error)
}

var _ FormHandle = (*ItemFormHandle)(nil)

func newFormHandle(values, blank ItemForm, persist func(context.Context, Item) (*Item, error)) *ItemFormHandle {
	return &ItemFormHandle{values: values, blank: blank, persist: persist}
}

// Values returns the current field values.
func (h *ItemFormHandle) Values() ItemForm { return h.values }

// Errors returns inline field errors from the last Submit.
func (h *ItemFormHandle) Errors() ValidationErrors { return h.errors }

// Reset clears the fields and any errors.
func (h *ItemFormHandle) Reset() {
	h.values = h.blank
	h.errors = nil
}

// Submit validates and persists the form. Missing required values yield
// ErrInvalidForm; other field problems yield ValidationErrors. Both are
// also kept for inline display.
func (h *ItemFormHandle) Submit(ctx context.Context) (*Item, error) {
	required := h.values.checkSubmittable()
	it, err := h.values.Item()

	var fieldErrs ValidationErrors
	errors.As(err, &fieldErrs)

	if len(required) > 0 {
		for k, v := range fieldErrs {
			if _, ok := required[k]; !ok {
				required[k] = v
			}
		}
		h.errors = required
		return nil, fmt.Errorf("%w: %w", ErrInvalidForm, required)
	}
	if err != nil {
		h.errors = fieldErrs
		return nil, err
	}

	h.errors = nil
	return h.persist(ctx, it)
}
