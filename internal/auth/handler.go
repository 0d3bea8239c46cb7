package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quizgrid/backend/internal/models"
	"github.com/quizgrid/backend/pkg/response"
	"github.com/quizgrid/backend/pkg/utils"
)

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"` // optional, defaults to USER
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// Register handles POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Username, hash, models.ParseRole(req.Role))
	if err != nil {
		if errors.Is(err, models.ErrDuplicateUsername) {
			response.Conflict(c, "username already registered")
			return
		}
		h.logger.Error("create user", zap.Error(err), zap.String("username", req.Username))
		response.Internal(c, "failed to create user")
		return
	}

	token, err := h.jwt.Generate(user.Username, user.Role, user.ID)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.Created(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		response.Unauthorized(c, "invalid username or password")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid username or password")
		return
	}

	token, err := h.jwt.Generate(user.Username, user.Role, user.ID)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	c.JSON(http.StatusOK, response.Body{Success: true, Data: TokenResponse{Token: token, User: user.ToPublic()}})
}

// Validate handles GET /auth/validate?token=. Open endpoint: reports only
// valid/invalid, never the decode detail.
func (h *Handler) Validate(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.BadRequest(c, "missing token")
		return
	}
	if _, err := h.jwt.Validate(token); err != nil {
		response.Unauthorized(c, "invalid token")
		return
	}
	response.OK(c, "Valid")
}

// Role handles GET /auth/role?token=. Returns the role claim of a valid token.
func (h *Handler) Role(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.BadRequest(c, "missing token")
		return
	}
	claims, err := h.jwt.Validate(token)
	if err != nil {
		response.Unauthorized(c, "invalid token")
		return
	}
	response.OK(c, claims.Role)
}

// UserID handles GET /auth/username/:username. Internal lookup used by the
// quiz service to stamp a creator's numeric id on new quizzes.
func (h *Handler) UserID(c *gin.Context) {
	id, err := h.repo.IDByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.Internal(c, "failed to resolve user")
		return
	}
	response.OK(c, id)
}
