package config

import "os"

type Config struct {
	ServerPort        string
	TesseractDataPath string
	PaddleAPIURL      string
	MaxFileSize       int64
}

func LoadConfig() *Config {
	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	tesseractDataPath := os.Getenv("TESSDATA_PREFIX")
	if tesseractDataPath == "" {
		tesseractDataPath = "/usr/share/tesseract-ocr/5/tessdata/"
	}

	// Empty means no PaddleOCR fallback is configured.
	paddleAPIURL := os.Getenv("PADDLEOCR_API_URL")

	return &Config{
		ServerPort:        serverPort,
		TesseractDataPath: tesseractDataPath,
		PaddleAPIURL:      paddleAPIURL,
		MaxFileSize:       10 * 1024 * 1024, // 10 MB
	}
}
