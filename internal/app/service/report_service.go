package service

import (
	"fmt"

	"github.com/krishnakath/dairyshop-backend/internal/app/model"
	"github.com/krishnakath/dairyshop-backend/internal/app/repository"
	"github.com/krishnakath/dairyshop-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// ReportService builds admin-facing XLSX exports.
type ReportService interface {
	ExportOrders(status model.OrderStatus) ([]byte, error)
}

type reportService struct {
	orderRepo repository.OrderRepository
}

func NewReportService(orderRepo repository.OrderRepository) ReportService {
	return &reportService{orderRepo: orderRepo}
}

func (s *reportService) ExportOrders(status model.OrderStatus) ([]byte, error) {
	orders, err := s.orderRepo.FindAll(status)
	if err != nil {
		logger.Error("Failed to fetch orders for export", err, map[string]interface{}{
			"status": status,
		})
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Orders"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"Order ID", "Date", "Customer", "Email", "Status", "Transaction ID", "Items", "Total"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, order := range orders {
		items := ""
		for i, item := range order.OrderItems {
			if i > 0 {
				items += ", "
			}
			items += fmt.Sprintf("%s x%d", item.Product.Name, item.Quantity)
		}

		values := []interface{}{
			order.ID,
			order.CreatedAt.Format("2006-01-02 15:04"),
			order.User.Name,
			order.User.Email,
			string(order.Status),
			order.TransactionID,
			items,
			order.TotalAmount,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		logger.Error("Failed to write orders workbook", err)
		return nil, err
	}

	logger.Info("Orders exported to XLSX", map[string]interface{}{
		"orders": len(orders),
		"status": status,
	})

	return buf.Bytes(), nil
}
