package filestorage

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/itsoft/storage-service/internal/response"
)

// expiredDateLayout renders UTC timestamps with millisecond precision.
const expiredDateLayout = "2006-01-02T15:04:05.000Z"

// formField is the multipart field carrying the uploaded image.
const formField = "file"

// Handler holds HTTP handlers for one file category.
type Handler struct {
	svc            *Service
	maxUploadBytes int64
}

// NewHandler creates a new Handler. maxUploadBytes <= 0 disables the body limit.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// Category returns the category served by this handler.
func (h *Handler) Category() Category {
	return h.svc.Category()
}

type uploadResponse struct {
	FileName string `json:"fileName" example:"apple-logo-1718000000000.jpg"`
}

type fileResponse struct {
	FileName    string `json:"fileName"    example:"apple-logo-1718000000000.jpg"`
	PathToFile  string `json:"pathToFile"  example:"s3/company-logos/apple-logo-1718000000000.jpg?X-Amz-Algorithm=AWS4-HMAC-SHA256"`
	ExpiredDate string `json:"expiredDate" example:"2026-10-17T12:00:00.000Z"`
}

type deleteResponse struct {
	Message string `json:"message" example:"File deleted successfully"`
}

// Routes mounts the category endpoints. protect, when not nil, wraps the
// endpoints that change state.
func (h *Handler) Routes(protect func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{fileUuid}", h.Get)
	r.Group(func(r chi.Router) {
		if protect != nil {
			r.Use(protect)
		}
		r.Post("/upload", h.Upload)
		r.Delete("/{fileUuid}", h.Delete)
	})
	return r
}

// Upload godoc
//
//	@Summary		Upload image
//	@Description	Store a png/jpg/jpeg image. The stored name is the original base name plus an upload suffix.
//	@Tags			files
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			category	path		string	true	"File category"	Enums(company-logos, vacancy-logos, user-avatars)
//	@Param			file		formData	file	true	"Image file"
//	@Success		201			{object}	uploadResponse
//	@Failure		400			{object}	response.ErrorBody
//	@Failure		401			{object}	response.ErrorBody
//	@Failure		413			{object}	response.ErrorBody
//	@Failure		500			{object}	response.ErrorBody
//	@Security		BearerAuth
//	@Router			/{category}/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	file, header, err := r.FormFile(formField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.TooLarge(w, "File too large")
			return
		}
		response.BadRequest(w, "File is required")
		return
	}
	defer file.Close()

	res, err := h.svc.Upload(r.Context(), header.Filename, file, header.Size)
	if err != nil {
		if h.svc.IsInvalidExtension(err) {
			response.BadRequest(w, "Invalid file extension")
			return
		}
		response.InternalError(w)
		return
	}

	response.Created(w, uploadResponse{FileName: res.FileName})
}

// Get godoc
//
//	@Summary		Get image link
//	@Description	Returns a relative presigned download path valid for three days.
//	@Tags			files
//	@Produce		json
//	@Param			category	path		string	true	"File category"	Enums(company-logos, vacancy-logos, user-avatars)
//	@Param			fileUuid	path		string	true	"Stored file name"
//	@Success		200			{object}	fileResponse
//	@Failure		404			{object}	response.ErrorBody
//	@Failure		500			{object}	response.ErrorBody
//	@Router			/{category}/{fileUuid} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Get(r.Context(), chi.URLParam(r, "fileUuid"))
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "File not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, fileResponse{
		FileName:    d.FileName,
		PathToFile:  d.PathToFile,
		ExpiredDate: d.ExpiredDate.UTC().Format(expiredDateLayout),
	})
}

// Delete godoc
//
//	@Summary		Delete image
//	@Description	Removes the file. Deleting a missing file succeeds.
//	@Tags			files
//	@Produce		json
//	@Param			category	path		string	true	"File category"	Enums(company-logos, vacancy-logos, user-avatars)
//	@Param			fileUuid	path		string	true	"Stored file name"
//	@Success		200			{object}	deleteResponse
//	@Failure		401			{object}	response.ErrorBody
//	@Failure		500			{object}	response.ErrorBody
//	@Security		BearerAuth
//	@Router			/{category}/{fileUuid} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Delete(r.Context(), chi.URLParam(r, "fileUuid"))
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, deleteResponse{Message: res.Message})
}
