package port

import "github.com/garyjia/billed/internal/domain/route"

// Navigator swaps the mounted view for the given route
type Navigator interface {
	Navigate(r route.Route)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(r route.Route)

// Navigate calls f(r)
func (f NavigatorFunc) Navigate(r route.Route) { f(r) }

// ModalContent is what the receipt modal displays
type ModalContent struct {
	BillURL    string
	ImageWidth int
}

// ModalPresenter displays the receipt modal
type ModalPresenter interface {
	Show(content ModalContent)
}

// ReceiptIcon is the clicked "view receipt" affordance of a bill row
type ReceiptIcon interface {
	Attr(name string) string
}

// BillURLAttr is the attribute of a ReceiptIcon holding the receipt URL
const BillURLAttr = "data-bill-url"
