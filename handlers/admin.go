package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"timeclock/config"
	"timeclock/database"
	"timeclock/models"
)

// AdminHandler covers staff, store and department administration. All
// routes are mounted behind RequireRole(ADMIN).
type AdminHandler struct {
	config *config.Config
}

func NewAdminHandler(cfg *config.Config) *AdminHandler {
	return &AdminHandler{config: cfg}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	var users []models.User
	database.GetDB().Preload("Store").Preload("Department").Order("username asc").Find(&users)
	respondJSON(w, http.StatusOK, users)
}

type updateUserRequest struct {
	FullName     *string `json:"full_name"`
	Role         *string `json:"role" validate:"omitempty,oneof=ADMIN MANAGER EMPLOYEE"`
	StoreID      *uint   `json:"store_id"`
	DepartmentID *uint   `json:"department_id"`
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var user models.User
	if err := database.GetDB().First(&user, id).Error; err != nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "User not found")
		return
	}

	var req updateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Role != nil {
		user.Role = models.Role(*req.Role)
	}
	if req.StoreID != nil {
		user.StoreID = req.StoreID
	}
	if req.DepartmentID != nil {
		user.DepartmentID = req.DepartmentID
	}

	if err := database.GetDB().Save(&user).Error; err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to update user", err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := database.GetDB().Delete(&models.User{}, id).Error; err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to delete user", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type nameRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (h *AdminHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	var stores []models.Store
	database.GetDB().Order("name asc").Find(&stores)
	respondJSON(w, http.StatusOK, stores)
}

func (h *AdminHandler) CreateStore(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	store := models.Store{Name: req.Name}
	if err := database.GetDB().Create(&store).Error; err != nil {
		respondError(w, http.StatusConflict, ErrCodeConflict, "Failed to create store", err)
		return
	}
	respondJSON(w, http.StatusCreated, store)
}

func (h *AdminHandler) DeleteStore(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := database.GetDB().Delete(&models.Store{}, id).Error; err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to delete store", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *AdminHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	var departments []models.Department
	database.GetDB().Order("name asc").Find(&departments)
	respondJSON(w, http.StatusOK, departments)
}

func (h *AdminHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	department := models.Department{Name: req.Name}
	if err := database.GetDB().Create(&department).Error; err != nil {
		respondError(w, http.StatusConflict, ErrCodeConflict, "Failed to create department", err)
		return
	}
	respondJSON(w, http.StatusCreated, department)
}

func (h *AdminHandler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := database.GetDB().Delete(&models.Department{}, id).Error; err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to delete department", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *AdminHandler) ListManagerAssignments(w http.ResponseWriter, r *http.Request) {
	var assignments []models.StoreManager
	database.GetDB().Preload("User").Preload("Store").Find(&assignments)
	respondJSON(w, http.StatusOK, assignments)
}

type assignManagerRequest struct {
	UserID  uint `json:"user_id" validate:"required"`
	StoreID uint `json:"store_id" validate:"required"`
}

// AssignManager grants a MANAGER-role user visibility over one store's
// timesheets.
func (h *AdminHandler) AssignManager(w http.ResponseWriter, r *http.Request) {
	var req assignManagerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	db := database.GetDB()

	var manager models.User
	if err := db.First(&manager, req.UserID).Error; err != nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "User not found")
		return
	}
	if !manager.IsManager() {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "User is not a manager")
		return
	}

	var store models.Store
	if err := db.First(&store, req.StoreID).Error; err != nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Store not found")
		return
	}

	var existing int64
	db.Model(&models.StoreManager{}).
		Where("user_id = ? AND store_id = ?", req.UserID, req.StoreID).
		Count(&existing)
	if existing > 0 {
		respondError(w, http.StatusConflict, ErrCodeConflict, "Assignment already exists")
		return
	}

	assignment := models.StoreManager{UserID: req.UserID, StoreID: req.StoreID}
	if err := db.Create(&assignment).Error; err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to create assignment", err)
		return
	}
	respondJSON(w, http.StatusCreated, assignment)
}

func (h *AdminHandler) RemoveManagerAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := database.GetDB().Delete(&models.StoreManager{}, id).Error; err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to remove assignment", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid ID in path")
		return 0, false
	}
	return uint(id), true
}
