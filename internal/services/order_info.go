package services

import (
	"strconv"
	"strings"

	"github.com/bazaarhq/bazaar/internal/checkout"
	"github.com/bazaarhq/bazaar/internal/email"
	"github.com/bazaarhq/bazaar/internal/models"
)

// BuildOrderInfo flattens an order into the fields the email templates
// expect. Amounts are formatted as rupees with two decimals.
func BuildOrderInfo(store *models.Store, order *models.Order) *email.OrderInfo {
	info := &email.OrderInfo{
		OrderNumber:     strconv.Itoa(order.OrderNumber),
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		StoreName:       storeName(store),
		Subtotal:        formatRupees(order.Subtotal),
		Shipping:        formatRupees(order.ShippingFee),
		Total:           formatRupees(order.Total),
		CoinsEarned:     order.CoinsEarned,
		ShippingAddress: formatAddress(order.ShippingAddress),
		TrackingNumber:  order.TrackingNumber,
		TrackingURL:     order.TrackingURL,
		TrackingCarrier: order.Carrier,
		OrderDate:       order.CreatedAt.Format("January 2, 2006"),
	}
	if order.WalletDiscount > 0 {
		info.WalletDiscount = formatRupees(order.WalletDiscount)
	}

	for _, item := range order.Items {
		info.Items = append(info.Items, email.ItemInfo{
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  formatRupees(item.UnitPrice),
			TotalPrice: formatRupees(checkout.Round2(item.UnitPrice * float64(item.Quantity))),
		})
	}

	return info
}

// BuildReturnInfo assembles the fields for a return decision email.
func BuildReturnInfo(store *models.Store, order *models.Order, request *models.ReturnRequest) *email.ReturnInfo {
	itemName := ""
	if request.ItemIndex >= 0 && request.ItemIndex < len(order.Items) {
		itemName = order.Items[request.ItemIndex].Name
	}

	return &email.ReturnInfo{
		OrderNumber:     strconv.Itoa(order.OrderNumber),
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		StoreName:       storeName(store),
		ItemName:        itemName,
		RequestType:     string(request.Type),
		Approved:        request.Status == models.ReturnApproved,
		RejectionReason: request.RejectionReason,
	}
}

func formatRupees(v float64) string {
	return strconv.FormatFloat(checkout.Round2(v), 'f', 2, 64)
}

func formatAddress(addr *models.Address) string {
	if addr == nil {
		return ""
	}

	var lines []string
	appendLine := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			lines = append(lines, s)
		}
	}
	appendLine(addr.Name)
	appendLine(addr.Line1)
	appendLine(addr.Line2)

	locality := strings.TrimSpace(addr.City)
	if addr.State != "" {
		if locality != "" {
			locality += ", "
		}
		locality += addr.State
	}
	if addr.PostalCode != "" {
		if locality != "" {
			locality += " "
		}
		locality += addr.PostalCode
	}
	appendLine(locality)
	appendLine(addr.Country)
	appendLine(addr.Phone)

	return strings.Join(lines, "\n")
}

func storeName(store *models.Store) string {
	if store == nil {
		return ""
	}
	return store.Name
}
