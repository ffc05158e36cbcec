package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"roicalculator/types"
	"roicalculator/utils/helpers"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var symbolHeaders = []string{`symbol`, `ticker`, `stock\s*code`, `nse\s*code`}

type FileServiceI interface {
	ParseXLSXFile(ctx *gin.Context, files <-chan string, sentryCtx context.Context) error
}

type fileService struct{}

var FileService FileServiceI = &fileService{}

// BatchLine is one NDJSON line of a batch valuation stream.
type BatchLine struct {
	Symbol    string           `json:"symbol"`
	Sheet     string           `json:"sheet"`
	Valuation *types.Valuation `json:"valuation,omitempty"`
	Error     string           `json:"error,omitempty"`
	Status    int              `json:"status"`
}

// ParseXLSXFile reads the symbol column of every sheet of every uploaded workbook and
// streams one valuation per symbol. Uploaded files are removed once read.
func (fs *fileService) ParseXLSXFile(ctx *gin.Context, files <-chan string, sentryCtx context.Context) error {
	defer sentry.Recover()
	span := sentry.StartSpan(sentryCtx, "[Service] ParseXLSXFile")
	defer span.Finish()

	for filePath := range files {
		symbols, err := readSymbols(filePath)
		removeUpload(filePath)
		if err != nil {
			sentry.CaptureException(err)
			zap.L().Error("Error parsing XLSX file", zap.String("filePath", filePath), zap.Error(err))
			continue
		}

		for _, s := range symbols {
			line := BatchLine{Symbol: s.symbol, Sheet: s.sheet, Status: http.StatusOK}
			valuation, err := ValuationService.Evaluate(span.Context(), s.symbol)
			if err != nil {
				line.Error = err.Error()
				line.Status = StatusFor(err)
			} else {
				line.Valuation = valuation
			}

			data, err := json.Marshal(line)
			if err != nil {
				zap.L().Error("Error marshalling data", zap.Error(err))
				sentry.CaptureException(err)
				continue
			}
			if _, err := ctx.Writer.Write(append(data, '\n')); err != nil {
				sentry.CaptureException(err)
				zap.L().Error("Error writing data", zap.Error(err))
				return err
			}
			ctx.Writer.Flush()
		}
	}
	return nil
}

type sheetSymbol struct {
	sheet  string
	symbol string
}

// readSymbols returns the non-empty cells below the first symbol header of each sheet,
// stopping at a total row.
func readSymbols(filePath string) ([]sheetSymbol, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []sheetSymbol
	for _, sheet := range f.GetSheetList() {
		zap.L().Info("Processing file", zap.String("filePath", filePath), zap.String("sheet", sheet))
		rows, err := f.GetRows(sheet)
		if err != nil {
			zap.L().Error("Error reading rows from sheet", zap.String("sheet", sheet), zap.Error(err))
			continue
		}

		column := -1
		seen := make(map[string]bool)
		for _, row := range rows {
			if len(row) == 0 {
				continue
			}
			if column < 0 {
				for i, cell := range row {
					if helpers.MatchHeader(cell, symbolHeaders) {
						column = i
						break
					}
				}
				continue
			}
			if isTotalRow(row) {
				break
			}
			if column >= len(row) {
				continue
			}
			symbol := strings.ToUpper(strings.TrimSpace(row[column]))
			if symbol == "" || seen[symbol] {
				continue
			}
			seen[symbol] = true
			out = append(out, sheetSymbol{sheet: sheet, symbol: symbol})
		}
		if column < 0 {
			zap.L().Warn("No symbol column in sheet", zap.String("sheet", sheet))
		}
	}
	return out, nil
}

// isTotalRow reports whether a cell of row reads exactly "total".
func isTotalRow(row []string) bool {
	for _, cell := range row {
		if helpers.NormalizeString(cell) == "total" {
			return true
		}
	}
	return false
}

func removeUpload(filePath string) {
	if err := os.Remove(filePath); err != nil {
		zap.L().Error("Error removing file", zap.String("filePath", filePath), zap.Error(err))
	} else {
		zap.L().Info("File removed successfully", zap.String("filePath", filePath))
	}
}

// StatusFor maps a valuation error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
