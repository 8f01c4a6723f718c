package table

import "fmt"

// Op is a structural table operation.
type Op uint8

const (
	AddColumn Op = iota
	RemoveColumn
	AddRow
	RemoveRow
	DeleteTable
)

var opNames = [...]string{
	AddColumn:    "add-column",
	RemoveColumn: "remove-column",
	AddRow:       "add-row",
	RemoveRow:    "remove-row",
	DeleteTable:  "delete-table",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", o)
}

// ParseOp parses an operation name such as "add-column".
func ParseOp(s string) (Op, error) {
	for i, name := range opNames {
		if name == s {
			return Op(i), nil
		}
	}
	return 0, fmt.Errorf("unknown table operation %q", s)
}

// Ops returns every operation in declaration order.
func Ops() []Op {
	return []Op{AddColumn, RemoveColumn, AddRow, RemoveRow, DeleteTable}
}
