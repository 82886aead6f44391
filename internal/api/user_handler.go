package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"videosplus/storefront/internal/domain"
	"videosplus/storefront/internal/repository"
	"videosplus/storefront/internal/service"
)

// UserHandler manages storefront accounts. Admin only.
type UserHandler struct {
	userRepo    repository.UserRepository
	authService service.AuthService
}

func NewUserHandler(userRepo repository.UserRepository, authService service.AuthService) *UserHandler {
	return &UserHandler{userRepo: userRepo, authService: authService}
}

// --- Request/Response Structs ---

type CreateUserRequest struct {
	Email    string      `json:"email" binding:"required,email"`
	Name     string      `json:"name" binding:"required"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     domain.Role `json:"role" binding:"omitempty,oneof=admin customer"`
}

// UserResponse excludes the password hash
type UserResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
	CreatedAt string      `json:"createdAt"`
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userRepo.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "User")
		return
	}
	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = MapUserToResponse(&users[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

func (h *UserHandler) GetUserByEmail(c *gin.Context) {
	user, err := h.userRepo.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// CreateUser godoc
// @Summary Create an account
// @Tags Users
// @Accept json
// @Produce json
// @Param user body CreateUserRequest true "Account details"
// @Success 201 {object} UserResponse
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 409 {object} gin.H "Conflict (email already exists)"
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := bindStrict(c, &req); err != nil {
		abortValidation(c, err)
		return
	}

	hashed, err := h.authService.HashPassword(req.Password)
	if err != nil {
		respondError(c, err, "User")
		return
	}
	role := req.Role
	if role == "" {
		role = domain.RoleCustomer
	}

	user, err := h.userRepo.Create(c.Request.Context(), domain.User{
		Email:    req.Email,
		Name:     req.Name,
		Password: hashed,
		Role:     role,
	})
	if err != nil {
		respondError(c, err, "User")
		return
	}
	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

// UpdateUser merges the body into the account. A new password is hashed first.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var patch domain.UserPatch
	if err := bindStrict(c, &patch); err != nil {
		abortValidation(c, err)
		return
	}
	if patch.Password != nil {
		hashed, err := h.authService.HashPassword(*patch.Password)
		if err != nil {
			respondError(c, err, "User")
			return
		}
		patch.Password = &hashed
	}

	user, err := h.userRepo.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	deleted, err := h.userRepo.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "User")
		return
	}
	if !deleted {
		abortWithError(c, http.StatusNotFound, "User not found")
		return
	}
	c.Status(http.StatusNoContent)
}
