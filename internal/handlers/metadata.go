// internal/handlers/metadata.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javajoker/story-mcp/internal/i18n"
	"github.com/javajoker/story-mcp/internal/services"
	"github.com/javajoker/story-mcp/internal/utils"
)

const maxUploadSize = 32 << 20

type MetadataHandler struct {
	storageService *services.StorageService
	socialService  *services.SocialService
	auditService   *services.AuditService
}

func NewMetadataHandler(storageService *services.StorageService, socialService *services.SocialService, auditService *services.AuditService) *MetadataHandler {
	return &MetadataHandler{
		storageService: storageService,
		socialService:  socialService,
		auditService:   auditService,
	}
}

// POST /metadata
func (h *MetadataHandler) UploadIPMetadata(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.IPMetadataRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.storageService.UploadIPMetadata(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyMetadataUploaded),
		"metadata": res,
	})
}

// POST /metadata/json
func (h *MetadataHandler) UploadJSON(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.UploadJSONRequest
	if !bindJSON(c, &req) {
		return
	}

	doc, err := h.storageService.UploadJSON(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyMetadataUploaded),
		"document": doc,
	})
}

// POST /metadata/files (multipart, field "file")
func (h *MetadataHandler) UploadFile(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		_ = c.Error(err)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "file"), err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	name := c.PostForm("name")
	if name == "" {
		name = fileHeader.Filename
	}

	doc, err := h.storageService.UploadFile(c.Request.Context(), name, file)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyMetadataUploaded),
		"document": doc,
		"filename": fileHeader.Filename,
	})
}

// GET /metadata/pins/:cid
func (h *MetadataHandler) GetPin(c *gin.Context) {
	pin, err := h.auditService.FindPin(c.Request.Context(), c.Param("cid"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.NotFoundResponse(c, i18n.KeyPinNotFound)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyPinFound),
		"pin":     pin,
	})
}

// POST /social/parse
func (h *MetadataHandler) ParseSocialURL(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.ParseSocialURLRequest
	if !bindJSON(c, &req) {
		return
	}

	link, err := h.socialService.Parse(req.URL)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeySocialParsed),
		"link":    link,
	})
}
