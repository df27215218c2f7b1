package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jordanlanch/outreach/pkg/leads"
	"github.com/jordanlanch/outreach/pkg/logger"
)

// Supported export formats
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
)

var exportHeader = []string{
	"ID", "Name", "Email", "Phone", "Company", "Status", "Score",
	"Source", "Do Not Call", "Notes", "Created At",
}

// Service writes lead exports to the storage path
type Service struct {
	store       *leads.Store
	storagePath string
	log         logger.Logger
}

// NewService creates an export service. The storage directory is
// created if missing.
func NewService(store *leads.Store, storagePath string, log logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	os.MkdirAll(storagePath, 0755)
	return &Service{store: store, storagePath: storagePath, log: log}
}

// Export generates a file with every lead in the store and returns its
// path and row count
func (s *Service) Export(format string) (string, int, error) {
	if format != FormatCSV && format != FormatExcel {
		return "", 0, fmt.Errorf("invalid format: must be csv or excel")
	}

	all := s.store.All()
	ext := "csv"
	if format == FormatExcel {
		ext = "xlsx"
	}
	timestamp := time.Now().Format("20060102-150405")
	path := filepath.Join(s.storagePath, fmt.Sprintf("leads-%s.%s", timestamp, ext))

	var err error
	if format == FormatCSV {
		err = s.generateCSV(path, all)
	} else {
		err = s.generateExcel(path, all)
	}
	if err != nil {
		return "", 0, err
	}

	s.log.Info("export generated", "path", path, "count", len(all), "format", format)
	return path, len(all), nil
}

func (s *Service) generateCSV(path string, all []leads.Lead) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, lead := range all {
		row := []string{
			lead.ID,
			lead.Name,
			lead.Email,
			lead.Phone,
			lead.Company,
			lead.Status,
			strconv.Itoa(lead.Score),
			lead.Source,
			strconv.FormatBool(lead.DoNotCall),
			lead.Notes,
			lead.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return nil
}

func (s *Service) generateExcel(path string, all []leads.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Leads"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	for i, header := range exportHeader {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, lead := range all {
		row := rowIdx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), lead.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), lead.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), lead.Email)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), lead.Phone)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), lead.Company)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), lead.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), lead.Score)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), lead.Source)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), lead.DoNotCall)
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), lead.Notes)
		f.SetCellValue(sheetName, fmt.Sprintf("K%d", row), lead.CreatedAt.Format(time.RFC3339))
	}

	for i := range exportHeader {
		col := string(rune('A' + i))
		f.SetColWidth(sheetName, col, col, 15)
	}

	f.SetActiveSheet(index)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}

	return nil
}
