package cart

import "github.com/fjod/go_cart/storefront/internal/domain"

type ActionKind int

const (
	ActionAdd ActionKind = iota + 1
	ActionRemove
	ActionSetQuantity
	ActionClear
	ActionLoad
	ActionSettle
)

func (k ActionKind) String() string {
	switch k {
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	case ActionSetQuantity:
		return "set_quantity"
	case ActionClear:
		return "clear"
	case ActionLoad:
		return "load"
	case ActionSettle:
		return "settle"
	default:
		return "unknown"
	}
}

// Action is one cart transition. Only the fields relevant to Kind are read.
type Action struct {
	Kind      ActionKind
	Product   domain.Product
	ProductID int64
	Quantity  int
	Lines     []domain.CartLine
}

func Add(p domain.Product, quantity int) Action {
	return Action{Kind: ActionAdd, Product: p, Quantity: quantity}
}

func Remove(productID int64) Action {
	return Action{Kind: ActionRemove, ProductID: productID}
}

func SetQuantity(productID int64, quantity int) Action {
	return Action{Kind: ActionSetQuantity, ProductID: productID, Quantity: quantity}
}

func Clear() Action {
	return Action{Kind: ActionClear}
}

func Load(lines []domain.CartLine) Action {
	return Action{Kind: ActionLoad, Lines: lines}
}

// Settle removes the quantities of an ordered snapshot. Applied to the
// unchanged cart it empties it; anything added after the snapshot stays.
func Settle(ordered []domain.CartLine) Action {
	return Action{Kind: ActionSettle, Lines: ordered}
}

// Reduce returns the lines after applying a. The input slice is never
// modified. There is at most one line per product id and no line with a
// quantity below one.
func Reduce(lines []domain.CartLine, a Action) []domain.CartLine {
	switch a.Kind {
	case ActionAdd:
		if a.Quantity < 1 {
			return lines
		}
		out := clone(lines)
		if i := indexOf(out, a.Product.ID); i >= 0 {
			out[i].Quantity += a.Quantity
			return out
		}
		return append(out, domain.CartLine{Product: a.Product, Quantity: a.Quantity})

	case ActionRemove:
		return without(lines, a.ProductID)

	case ActionSetQuantity:
		if a.Quantity <= 0 {
			return without(lines, a.ProductID)
		}
		i := indexOf(lines, a.ProductID)
		if i < 0 {
			return lines
		}
		out := clone(lines)
		out[i].Quantity = a.Quantity
		return out

	case ActionClear:
		return []domain.CartLine{}

	case ActionLoad:
		return normalize(a.Lines)

	case ActionSettle:
		out := clone(lines)
		for _, o := range a.Lines {
			if i := indexOf(out, o.Product.ID); i >= 0 {
				out[i].Quantity -= o.Quantity
			}
		}
		return normalize(out)

	default:
		return lines
	}
}

func indexOf(lines []domain.CartLine, productID int64) int {
	for i := range lines {
		if lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func clone(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, len(lines), len(lines)+1)
	copy(out, lines)
	return out
}

func without(lines []domain.CartLine, productID int64) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.Product.ID != productID {
			out = append(out, l)
		}
	}
	return out
}

// normalize makes externally supplied lines (persisted data, tests) obey the
// cart rules: non-positive quantities are dropped and duplicates merge
// into the first occurrence.
func normalize(in []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(in))
	for _, l := range in {
		if l.Quantity <= 0 {
			continue
		}
		if i := indexOf(out, l.Product.ID); i >= 0 {
			out[i].Quantity += l.Quantity
			continue
		}
		out = append(out, l)
	}
	return out
}
