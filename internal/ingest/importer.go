package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"pricewatch/internal/domain"
	"pricewatch/internal/middleware"
	"pricewatch/internal/pkg/clock"
	"pricewatch/internal/repository"
	"pricewatch/internal/service"

	"go.uber.org/zap"
)

var (
	ErrFileAlreadyProcessed = errors.New("file already processed")
	ErrEmptyFile            = errors.New("file has no header row")
	ErrMissingColumn        = errors.New("missing column")

	errInvalidRow = errors.New("invalid row")
)

// Kind is the entry type carried by an import file
type Kind string

const (
	KindPrices    Kind = "prices"
	KindDiscounts Kind = "discounts"
)

var requiredColumns = map[Kind][]string{
	KindPrices:    {"productId", "productCategory", "brand", "storeName", "price", "date"},
	KindDiscounts: {"productId", "fromDate", "toDate", "percentageOfDiscount", "storeName", "date"},
}

// ImportResult summarises one imported file
type ImportResult struct {
	FileName string `json:"fileName"`
	Kind     Kind   `json:"kind"`
	Imported int    `json:"imported"`
	Failed   int    `json:"failed"`
}

type priceRow struct {
	ProductID       string  `json:"productId" validate:"required,productid"`
	ProductCategory string  `json:"productCategory" validate:"required,max=100"`
	Brand           string  `json:"brand" validate:"required,max=100"`
	StoreName       string  `json:"storeName" validate:"required,max=100"`
	Price           float64 `json:"price" validate:"gte=0"`
	Date            string  `json:"date" validate:"required,datetime=2006-01-02"`
}

type discountRow struct {
	ProductID            string  `json:"productId" validate:"required,productid"`
	FromDate             string  `json:"fromDate" validate:"required,datetime=2006-01-02"`
	ToDate               string  `json:"toDate" validate:"required,datetime=2006-01-02"`
	PercentageOfDiscount float64 `json:"percentageOfDiscount" validate:"gte=0,lte=100"`
	StoreName            string  `json:"storeName" validate:"required,max=100"`
	Date                 string  `json:"date" validate:"required,datetime=2006-01-02"`
}

// Importer loads price and discount CSV files through the entry services and
// records every imported file name.
type Importer struct {
	prices    service.PriceEntryService
	discounts service.DiscountEntryService
	files     repository.ProcessedFileRepository
	clock     clock.Clock
	logger    *zap.Logger

	mu       sync.Mutex
	inFlight map[string]*fileLock
}

type fileLock struct {
	sync.Mutex
	waiters int
}

func NewImporter(
	prices service.PriceEntryService,
	discounts service.DiscountEntryService,
	files repository.ProcessedFileRepository,
	clk clock.Clock,
	logger *zap.Logger,
) *Importer {
	return &Importer{
		prices:    prices,
		discounts: discounts,
		files:     files,
		clock:     clk,
		logger:    logger,
		inFlight:  make(map[string]*fileLock),
	}
}

// lockFile serialises imports of the same file name
func (i *Importer) lockFile(fileName string) func() {
	i.mu.Lock()
	lock, ok := i.inFlight[fileName]
	if !ok {
		lock = &fileLock{}
		i.inFlight[fileName] = lock
	}
	lock.waiters++
	i.mu.Unlock()

	lock.Lock()
	return func() {
		lock.Unlock()

		i.mu.Lock()
		lock.waiters--
		if lock.waiters == 0 {
			delete(i.inFlight, fileName)
		}
		i.mu.Unlock()
	}
}

// Import reads a CSV file with a header row. Rows that fail to parse or
// validate are counted and skipped. A store failure aborts the import without
// recording the file, so it can be retried. The file name is recorded once the
// whole file has been stored.
func (i *Importer) Import(ctx context.Context, fileName string, reader io.Reader) (*ImportResult, error) {
	unlock := i.lockFile(fileName)
	defer unlock()

	exists, err := i.files.ExistsByFileName(ctx, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to check processed file: %w", err)
	}
	if exists {
		return nil, ErrFileAlreadyProcessed
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	header, err := csvReader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := indexColumns(header)
	kind := detectKind(columns)
	for _, column := range requiredColumns[kind] {
		if _, ok := columns[column]; !ok {
			return nil, fmt.Errorf("%w %q for %s file", ErrMissingColumn, column, kind)
		}
	}

	log := i.logger.With(zap.String("file", fileName), zap.String("kind", string(kind)))
	log.Info("Starting import")

	result := &ImportResult{FileName: fileName, Kind: kind}
	line := 1
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		line++
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			log.Warn("Failed to read CSV line", zap.Int("line", line), zap.Error(err))
			result.Failed++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", fileName, err)
		}

		err = i.importRecord(ctx, kind, columns, record)
		if errors.Is(err, errInvalidRow) {
			log.Warn("Skipping row", zap.Int("line", line), zap.Error(err))
			result.Failed++
			continue
		}
		if err != nil {
			log.Error("Import aborted", zap.Int("line", line), zap.Int("imported", result.Imported), zap.Error(err))
			return nil, fmt.Errorf("failed to import %s line %d: %w", fileName, line, err)
		}
		result.Imported++
	}

	_, err = i.files.Save(ctx, &domain.ProcessedFile{
		FileName:      fileName,
		ProcessedDate: domain.DateOf(i.clock.Now()),
	})
	if errors.Is(err, repository.ErrProcessedFileExists) {
		return nil, ErrFileAlreadyProcessed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record processed file: %w", err)
	}

	log.Info("Import completed",
		zap.Int("imported", result.Imported),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// ImportDir imports every *.csv file of dir that has not been processed yet,
// in file name order. A failing file is logged and does not stop the scan.
func (i *Importer) ImportDir(ctx context.Context, dir string) ([]*ImportResult, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to list import directory: %w", err)
	}
	sort.Strings(paths)

	results := []*ImportResult{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := i.importFile(ctx, path)
		if errors.Is(err, ErrFileAlreadyProcessed) {
			continue
		}
		if err != nil {
			i.logger.Error("Failed to import file", zap.String("path", path), zap.Error(err))
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

// ListProcessedFiles returns every recorded import
func (i *Importer) ListProcessedFiles(ctx context.Context) ([]*domain.ProcessedFile, error) {
	files, err := i.files.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processed files: %w", err)
	}
	return files, nil
}

func (i *Importer) importFile(ctx context.Context, path string) (*ImportResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return i.Import(ctx, filepath.Base(path), file)
}

func (i *Importer) importRecord(ctx context.Context, kind Kind, columns map[string]int, record []string) error {
	field := func(name string) string {
		idx := columns[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	if kind == KindDiscounts {
		entry, err := parseDiscountRow(field)
		if err != nil {
			return fmt.Errorf("%w: %w", errInvalidRow, err)
		}
		_, err = i.discounts.Create(ctx, entry)
		return err
	}

	entry, err := parsePriceRow(field)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidRow, err)
	}
	_, err = i.prices.Create(ctx, entry)
	return err
}

func parsePriceRow(field func(string) string) (*domain.PriceEntry, error) {
	price, err := strconv.ParseFloat(field("price"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price: %w", err)
	}

	row := priceRow{
		ProductID:       field("productId"),
		ProductCategory: field("productCategory"),
		Brand:           field("brand"),
		StoreName:       field("storeName"),
		Price:           price,
		Date:            field("date"),
	}
	if err := middleware.ValidateRequest(row); err != nil {
		return nil, err
	}

	date, err := domain.ParseDate(row.Date)
	if err != nil {
		return nil, err
	}

	entry := &domain.PriceEntry{
		ProductID:       row.ProductID,
		ProductCategory: row.ProductCategory,
		Brand:           row.Brand,
		StoreName:       row.StoreName,
		Price:           row.Price,
		Date:            date,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	return entry, nil
}

func parseDiscountRow(field func(string) string) (*domain.DiscountEntry, error) {
	percentage, err := strconv.ParseFloat(field("percentageOfDiscount"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid percentageOfDiscount: %w", err)
	}

	row := discountRow{
		ProductID:            field("productId"),
		FromDate:             field("fromDate"),
		ToDate:               field("toDate"),
		PercentageOfDiscount: percentage,
		StoreName:            field("storeName"),
		Date:                 field("date"),
	}
	if err := middleware.ValidateRequest(row); err != nil {
		return nil, err
	}

	entry := &domain.DiscountEntry{
		ProductID:            row.ProductID,
		PercentageOfDiscount: row.PercentageOfDiscount,
		StoreName:            row.StoreName,
	}
	if entry.FromDate, err = domain.ParseDate(row.FromDate); err != nil {
		return nil, err
	}
	if entry.ToDate, err = domain.ParseDate(row.ToDate); err != nil {
		return nil, err
	}
	if entry.Date, err = domain.ParseDate(row.Date); err != nil {
		return nil, err
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	return entry, nil
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for idx, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, seen := columns[name]; !seen {
			columns[name] = idx
		}
	}
	return columns
}

func detectKind(columns map[string]int) Kind {
	if _, ok := columns["percentageOfDiscount"]; ok {
		return KindDiscounts
	}
	return KindPrices
}
