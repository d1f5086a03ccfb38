package fault

import "fmt"

// Category is the coarse error class carried by a platform error event.
type Category uint8

const (
	CategoryUnknown Category = iota
	Class1
	Class2
)

func (c Category) Valid() bool {
	return c == Class1 || c == Class2
}

func (c Category) String() string {
	switch c {
	case Class1:
		return "class1"
	case Class2:
		return "class2"
	default:
		return fmt.Sprintf("category(%d)", uint8(c))
	}
}
