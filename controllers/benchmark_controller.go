package controllers

import (
	"net/http"
	"roicalculator/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BenchmarkControllerI interface {
	GetBenchmarks(ctx *gin.Context)
	ReloadBenchmarks(ctx *gin.Context)
}

type benchmarkController struct{}

var BenchmarkController BenchmarkControllerI = &benchmarkController{}

func (b *benchmarkController) GetBenchmarks(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, services.BenchmarkService.Current())
}

func (b *benchmarkController) ReloadBenchmarks(ctx *gin.Context) {
	zap.L().Info("Manual benchmark reload triggered via API")
	if err := services.BenchmarkService.Reload(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Benchmarks reloaded", "ratios": len(services.BenchmarkService.Current())})
}
