package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"medstore/models"
	"medstore/providers"
	"medstore/services"
)

const DefaultMaxImageBytes = 5 << 20

// MedicineService is what MedicineController needs from the catalog
type MedicineService interface {
	SearchMedicines(ctx context.Context, query string, latitude, longitude *float64, nearbyOnly bool) ([]models.Medicine, error)
	MedicinesByCategory(ctx context.Context, category string, page, limit int64) ([]models.Medicine, services.Pagination, error)
	MedicinesByStore(ctx context.Context, storeID string) ([]models.Medicine, error)
	GetMedicine(ctx context.Context, id string) (*models.Medicine, error)
	CreateMedicine(ctx context.Context, in services.MedicineInput) (*models.Medicine, error)
	UpdateMedicine(ctx context.Context, id string, in services.MedicineInput) (*models.Medicine, error)
	DeleteMedicine(ctx context.Context, id string) error
}

// MedicineController handles medicine browsing and administration
type MedicineController struct {
	base
	medicines     MedicineService
	uploader      providers.ImageUploader
	maxImageBytes int64
}

// NewMedicineController creates a new MedicineController
func NewMedicineController(medicines MedicineService, uploader providers.ImageUploader, maxImageBytes int64, logger *zap.Logger, timeout time.Duration) *MedicineController {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &MedicineController{
		base:          newBase(logger, timeout),
		medicines:     medicines,
		uploader:      uploader,
		maxImageBytes: maxImageBytes,
	}
}

// SearchMedicines matches medicines by name
func (mc *MedicineController) SearchMedicines(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("query"))
	if query == "" {
		mc.fail(w, http.StatusBadRequest, "Search query is required")
		return
	}
	lat, latErr := optionalFloat(q.Get("latitude"))
	lng, lngErr := optionalFloat(q.Get("longitude"))
	if latErr != nil || lngErr != nil {
		mc.fail(w, http.StatusBadRequest, "Invalid coordinates")
		return
	}
	nearbyOnly := q.Get("nearbyOnly") == "true"

	ctx, cancel := mc.requestContext(r)
	defer cancel()

	medicines, err := mc.medicines.SearchMedicines(ctx, query, lat, lng, nearbyOnly)
	if err != nil {
		mc.fromError(w, r, "search medicines", err)
		return
	}
	mc.respond(w, http.StatusOK, Response{Data: medicines, Count: intPtr(len(medicines))})
}

// GetMedicinesByCategory returns one page of a category
func (mc *MedicineController) GetMedicinesByCategory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)
	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)

	ctx, cancel := mc.requestContext(r)
	defer cancel()

	medicines, pagination, err := mc.medicines.MedicinesByCategory(ctx, mux.Vars(r)["category"], page, limit)
	if err != nil {
		mc.fromError(w, r, "medicines by category", err)
		return
	}
	mc.respond(w, http.StatusOK, Response{Data: medicines, Pagination: &pagination})
}

// GetMedicinesByStore lists a store's active medicines
func (mc *MedicineController) GetMedicinesByStore(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := mc.requestContext(r)
	defer cancel()

	medicines, err := mc.medicines.MedicinesByStore(ctx, mux.Vars(r)["storeId"])
	if err != nil {
		mc.fromError(w, r, "medicines by store", err)
		return
	}
	mc.respond(w, http.StatusOK, Response{Data: medicines, Count: intPtr(len(medicines))})
}

// GetMedicineByID retrieves a single medicine by ID
func (mc *MedicineController) GetMedicineByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := mc.requestContext(r)
	defer cancel()

	medicine, err := mc.medicines.GetMedicine(ctx, mux.Vars(r)["id"])
	if err != nil {
		mc.fromError(w, r, "get medicine", err)
		return
	}
	mc.ok(w, "", medicine)
}

// CreateMedicine handles adding a new medicine (Admin only)
func (mc *MedicineController) CreateMedicine(w http.ResponseWriter, r *http.Request) {
	var in services.MedicineInput
	if !mc.decode(w, r, &in) {
		return
	}

	ctx, cancel := mc.requestContext(r)
	defer cancel()

	medicine, err := mc.medicines.CreateMedicine(ctx, in)
	if err != nil {
		mc.fromError(w, r, "create medicine", err)
		return
	}
	mc.respond(w, http.StatusCreated, Response{Message: "Medicine created successfully", Data: medicine})
}

// UpdateMedicine handles a partial medicine update (Admin only)
func (mc *MedicineController) UpdateMedicine(w http.ResponseWriter, r *http.Request) {
	var in services.MedicineInput
	if !mc.decode(w, r, &in) {
		return
	}

	ctx, cancel := mc.requestContext(r)
	defer cancel()

	medicine, err := mc.medicines.UpdateMedicine(ctx, mux.Vars(r)["id"], in)
	if err != nil {
		mc.fromError(w, r, "update medicine", err)
		return
	}
	mc.ok(w, "Medicine updated successfully", medicine)
}

// DeleteMedicine handles deleting a medicine (Admin only)
func (mc *MedicineController) DeleteMedicine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := mc.requestContext(r)
	defer cancel()

	if err := mc.medicines.DeleteMedicine(ctx, mux.Vars(r)["id"]); err != nil {
		mc.fromError(w, r, "delete medicine", err)
		return
	}
	mc.ok(w, "Medicine deleted successfully", nil)
}

// UploadImage stores the multipart "image" field and returns its URL
func (mc *MedicineController) UploadImage(w http.ResponseWriter, r *http.Request) {
	// leave room for the multipart framing around the file
	r.Body = http.MaxBytesReader(w, r.Body, mc.maxImageBytes+1<<20)
	if err := r.ParseMultipartForm(mc.maxImageBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			mc.fail(w, http.StatusBadRequest, mc.tooLargeMessage())
			return
		}
		mc.fail(w, http.StatusBadRequest, "No image file provided")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		mc.fail(w, http.StatusBadRequest, "No image file provided")
		return
	}
	defer file.Close()

	if header.Size > mc.maxImageBytes {
		mc.fail(w, http.StatusBadRequest, mc.tooLargeMessage())
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		mc.fail(w, http.StatusBadRequest, "No image file provided")
		return
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		mc.fail(w, http.StatusBadRequest, "Only image files are allowed")
		return
	}

	ctx, cancel := mc.requestContext(r)
	defer cancel()

	url, err := mc.uploader.UploadImage(ctx, header.Filename, data)
	if err != nil {
		mc.logger.Error("upload image", zap.String("filename", header.Filename), zap.Error(err))
		mc.fail(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}
	mc.ok(w, "Image uploaded successfully", map[string]string{"imageUrl": url})
}

func (mc *MedicineController) tooLargeMessage() string {
	return fmt.Sprintf("Image must be %dMB or smaller", mc.maxImageBytes>>20)
}
