package shared

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pasugo/internal/services"
	"pasugo/internal/utils"
)

type UploadHandler struct {
	uploadService *services.UploadService
}

func NewUploadHandler(uploadService *services.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

var uploadKinds = map[string]services.UploadKind{
	"payment-proof":    services.UploadPaymentProof,
	"collection-proof": services.UploadCollectionProof,
	"avatar":           services.UploadAvatar,
	"license":          services.UploadLicense,
}

// Upload handles POST /uploads/:kind with a multipart "file" field.
func (h *UploadHandler) Upload(c *gin.Context) {
	kind, ok := uploadKinds[c.Param("kind")]
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "unknown upload kind")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "file field required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "could not read file")
		return
	}
	defer file.Close()

	resp, err := h.uploadService.UploadImage(c.Request.Context(), kind,
		fileHeader.Header.Get("Content-Type"), fileHeader.Size, file)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "file uploaded", resp)
}
