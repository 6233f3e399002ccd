package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/kirana-copilot/gst-invoice-ocr/client"
	"github.com/kirana-copilot/gst-invoice-ocr/config"
	"github.com/kirana-copilot/gst-invoice-ocr/handler"
	"github.com/kirana-copilot/gst-invoice-ocr/service"
)

func main() {
	// Optional .env for local development; env vars win in deployment.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := config.LoadConfig()

	// Tesseract v5 needs the prefix set before the first client is created.
	os.Setenv("TESSDATA_PREFIX", cfg.TesseractDataPath)
	log.Println("TESSDATA_PREFIX set to:", cfg.TesseractDataPath)

	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath)
	defer tesseractClient.Close()

	var paddleClient *client.PaddleClient
	if cfg.PaddleAPIURL != "" {
		paddleClient = client.NewPaddleClient(cfg.PaddleAPIURL)
		log.Println("PaddleOCR fallback enabled at", cfg.PaddleAPIURL)
	}

	pdfProcessor := service.NewPDFProcessor()

	invoiceService := service.NewInvoiceService(tesseractClient, paddleClient, pdfProcessor)
	reportService := service.NewReportService()

	invoiceHandler := handler.NewInvoiceHandler(invoiceService, reportService)

	router := gin.Default()

	// Configure max multipart memory (32 MB)
	router.MaxMultipartMemory = 32 << 20

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "GST Invoice OCR",
		})
	})

	api := router.Group("/api/v1")
	{
		invoice := api.Group("/invoice")
		{
			invoice.POST("/analyze", invoiceHandler.Analyze)
			invoice.POST("/upload", invoiceHandler.Upload)
			invoice.POST("/gstr1", invoiceHandler.GenerateGSTR1)
		}
	}

	log.Printf("Starting GST Invoice OCR Service on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
