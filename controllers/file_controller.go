package controllers

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"roicalculator/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FileControllerI interface {
	ParseXLSXFile(ctx *gin.Context)
}

type fileController struct {
	uploadDir string
}

var FileController FileControllerI = &fileController{uploadDir: "./uploads"}

func (f *fileController) ParseXLSXFile(ctx *gin.Context) {
	// Parse the form and retrieve the uploaded files
	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error parsing form data"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No files found"})
		return
	}

	if err := os.MkdirAll(f.uploadDir, os.ModePerm); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating upload directory"})
		return
	}
	savedFilePaths := make(chan string, len(files))
	for _, file := range files {
		// uploads with the same name must not overwrite each other
		savePath := filepath.Join(f.uploadDir, uuid.New().String()+"-"+filepath.Base(file.Filename))
		if err := saveUpload(file, savePath); err != nil {
			close(savedFilePaths)
			for path := range savedFilePaths {
				os.Remove(path)
			}
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving file"})
			return
		}
		savedFilePaths <- savePath
	}
	close(savedFilePaths)

	ctx.Writer.Header().Set("Content-Type", "application/x-ndjson")
	ctx.Writer.Header().Set("Cache-Control", "no-cache")
	ctx.Writer.Header().Set("Connection", "keep-alive")

	if err := services.FileService.ParseXLSXFile(ctx, savedFilePaths, ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.Writer.Flush()
}

func saveUpload(file *multipart.FileHeader, savePath string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	return writeUpload(src, savePath)
}

// writeUpload copies src to savePath and leaves no partial file behind on failure.
func writeUpload(src io.Reader, savePath string) error {
	dst, err := os.Create(savePath)
	if err != nil {
		return err
	}

	_, err = io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(savePath)
		return err
	}
	return nil
}
