package controller

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/eduverify-backend/internal/app/service"
	apperrors "github.com/ikkim/eduverify-backend/internal/errors"
	"github.com/ikkim/eduverify-backend/internal/middleware"
)

// sniffLength is how many leading bytes are read for content detection
const sniffLength = 3072

type UploadController struct {
	fileService service.FileService
}

func NewUploadController(fileService service.FileService) *UploadController {
	return &UploadController{
		fileService: fileService,
	}
}

// UploadFile validates a document or logo and returns its mock URL
// POST /api/v1/upload (multipart: file, purpose=document|logo)
func (ctrl *UploadController) UploadFile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	header, err := c.FormFile("file")
	if err != nil {
		log.Warn("Upload without file", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "File is required")
		return
	}

	opts := service.DefaultFileOptions()
	if c.PostForm("purpose") == "logo" {
		opts = service.LogoOptions()
	}

	f, err := header.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", err, map[string]interface{}{
			"filename": header.Filename,
		})
		apperrors.RespondWithError(c, http.StatusBadRequest, apperrors.UploadFailed, "Could not read the uploaded file")
		return
	}
	defer f.Close()

	head := make([]byte, sniffLength)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		log.Error("Failed to read uploaded file", err, map[string]interface{}{
			"filename": header.Filename,
		})
		apperrors.RespondWithError(c, http.StatusBadRequest, apperrors.UploadFailed, "Could not read the uploaded file")
		return
	}

	info := service.FileInfo{
		Name: header.Filename,
		Size: header.Size,
		Type: ctrl.fileService.DetectContentType(header.Header.Get("Content-Type"), head[:n]),
	}

	if err := ctrl.fileService.ValidateFile(info, opts); err != nil {
		log.Warn("Upload rejected", map[string]interface{}{
			"filename": info.Name,
			"size":     info.Size,
			"type":     info.Type,
		})
		apperrors.ParseAndRespond(c, err, "upload file")
		return
	}

	uploaded, err := ctrl.fileService.Upload(c.Request.Context(), info)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "upload file")
		return
	}

	c.JSON(http.StatusCreated, uploaded)
}
