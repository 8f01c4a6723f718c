// Package table implements structural table editing.
//
// The same five operations (add or remove a column, add or remove a row,
// delete the table) are available on both document representations:
//
//   - ApplyMarkup edits a pipe table in markup text around a line/column
//     cursor.
//   - ApplyTree edits the TableRow and TableCell nodes of a rich-content
//     tree around a cell handle.
//
// Both paths share the index arithmetic of Grid and fail with the same
// Failure values, so equivalent inputs produce equivalent tables.
package table
