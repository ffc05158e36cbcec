package routes

import (
	"roicalculator/controllers"

	"github.com/gin-gonic/gin"
)

func Routes(r *gin.Engine) {

	v1 := r.Group("/api")

	{
		v1.GET("/keepServerRunning", controllers.HealthController.IsRunning)
		v1.GET("/valuation/:symbol", controllers.ValuationController.GetValuation)
		v1.GET("/valuation/:symbol/fundamentals", controllers.ValuationController.GetFundamentals)
		v1.GET("/valuation/:symbol/export", controllers.ValuationController.ExportValuation)
		v1.POST("/valuation/batch", controllers.FileController.ParseXLSXFile)
		v1.GET("/benchmarks", controllers.BenchmarkController.GetBenchmarks)
		v1.POST("/benchmarks/reload", controllers.BenchmarkController.ReloadBenchmarks)
	}
}
