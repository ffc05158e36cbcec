package controllers

import (
	"fmt"
	"net/http"
	"roicalculator/services"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ValuationControllerI interface {
	GetValuation(ctx *gin.Context)
	GetFundamentals(ctx *gin.Context)
	ExportValuation(ctx *gin.Context)
}

type valuationController struct{}

var ValuationController ValuationControllerI = &valuationController{}

func symbolParam(ctx *gin.Context) (string, bool) {
	symbol := strings.ToUpper(strings.TrimSpace(ctx.Param("symbol")))
	if symbol == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Symbol is required"})
		return "", false
	}
	return symbol, true
}

func abortWithValuationError(ctx *gin.Context, symbol string, err error) {
	ctx.JSON(services.StatusFor(err), gin.H{"error": err.Error(), "symbol": symbol})
}

func (v *valuationController) GetValuation(ctx *gin.Context) {
	symbol, ok := symbolParam(ctx)
	if !ok {
		return
	}
	valuation, err := services.ValuationService.Evaluate(ctx.Request.Context(), symbol)
	if err != nil {
		abortWithValuationError(ctx, symbol, err)
		return
	}
	ctx.JSON(http.StatusOK, valuation)
}

func (v *valuationController) GetFundamentals(ctx *gin.Context) {
	symbol, ok := symbolParam(ctx)
	if !ok {
		return
	}
	fundamentals, err := services.ValuationService.ComputeValuation(ctx.Request.Context(), symbol)
	if err != nil {
		abortWithValuationError(ctx, symbol, err)
		return
	}
	ctx.JSON(http.StatusOK, fundamentals)
}

// ExportValuation answers with the valuation as an XLSX attachment.
func (v *valuationController) ExportValuation(ctx *gin.Context) {
	symbol, ok := symbolParam(ctx)
	if !ok {
		return
	}
	valuation, err := services.ValuationService.Evaluate(ctx.Request.Context(), symbol)
	if err != nil {
		abortWithValuationError(ctx, symbol, err)
		return
	}

	wb, err := services.ExportService.BuildWorkbook(valuation)
	if err != nil {
		zap.L().Error("Error building workbook", zap.String("symbol", symbol), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error building workbook"})
		return
	}
	defer wb.Close()

	ctx.Header("Content-Type", xlsxContentType)
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s-valuation.xlsx", symbol))
	ctx.Status(http.StatusOK)
	if err := wb.Write(ctx.Writer); err != nil {
		zap.L().Error("Error writing workbook", zap.String("symbol", symbol), zap.Error(err))
	}
}
