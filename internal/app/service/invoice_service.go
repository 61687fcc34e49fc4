package service

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/krishnakath/dairyshop-backend/internal/app/model"
	"github.com/krishnakath/dairyshop-backend/pkg/logger"
)

type InvoiceService interface {
	Render(order *model.Order) ([]byte, error)
}

type invoiceService struct {
	shopName    string
	shopAddress string
}

func NewInvoiceService(shopName, shopAddress string) InvoiceService {
	return &invoiceService{
		shopName:    shopName,
		shopAddress: shopAddress,
	}
}

func (s *invoiceService) Render(order *model.Order) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Invoice #%d", order.ID), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, s.shopName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, s.shopAddress, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Invoice #%d", order.ID), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Date: %s", order.CreatedAt.Format("02 Jan 2006")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Status: %s", order.Status), "", 1, "L", false, 0, "")
	if order.TransactionID != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Transaction: %s", order.TransactionID), "", 1, "L", false, 0, "")
	}
	if order.User.Name != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Customer: %s", order.User.Name), "", 1, "L", false, 0, "")
	}
	if order.ShippingAddress != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Ship to: %s", order.ShippingAddress), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Line item table.
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(90, 8, "Product", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, "Unit Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(40, 8, "Subtotal", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range order.OrderItems {
		name := item.Product.Name
		if name == "" {
			name = fmt.Sprintf("Product #%d", item.ProductID)
		}
		pdf.CellFormat(90, 8, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", item.Subtotal()), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(150, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", order.TotalAmount), "1", 1, "R", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Thank you for your order.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		logger.Error("Failed to render invoice PDF", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return nil, err
	}

	logger.Debug("Invoice rendered", map[string]interface{}{
		"order_id": order.ID,
		"bytes":    buf.Len(),
	})

	return buf.Bytes(), nil
}
