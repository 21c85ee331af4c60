// Package core holds the inventory UI's domain logic, independent of HTTP
// and rendering.
//
// # Items
//
// [Item] is the inventory record. All of its fields are optional, and a
// record without an ID is transient. [Item.Record] flattens an item into a
// table record for the table view.
//
// # Service
//
// [Service] is the entry point for page flows. It lists items, loads one
// item, creates, updates and deletes items, and imports spreadsheets. It
// talks to an [ItemBackend] and a [SpreadsheetImporter] and keeps no item
// state of its own.
//
// Forms are exposed as a [FormHandle] with Values, Reset and Submit.
// Submitting with missing part number, name or quantity yields
// [ErrInvalidForm]. Other field problems come back as [ValidationErrors],
// keyed by field.
//
// # Error Handling
//
// [MapError] converts any error into a [UserMessage] for a notification:
//
//   - VAL: validation
//   - HTTP: non-2xx or unreachable backend; the status or "unknown" is included
//   - IMP: unreadable, unsupported or empty spreadsheets
//   - NF: missing item or invalid identifier
//   - LIM: import slots exhausted
//
// Nothing is retried.
package core
