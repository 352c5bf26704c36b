package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/dispatch"
	"github.com/gokulstevee/appsync-rbac-lambda/pkg/middleware"
)

// UserHandler exposes the user operations over HTTP. Every route goes
// through the dispatcher so HTTP and AppSync callers see the same results.
type UserHandler struct {
	d *dispatch.Dispatcher
}

func NewUserHandler(d *dispatch.Dispatcher) *UserHandler {
	return &UserHandler{d: d}
}

// Register mounts the routes. ver may be nil, in which case every route
// answers 503 since no caller can be identified. limit, when non-nil, runs
// after authentication so callers are throttled per subject.
func (h *UserHandler) Register(r *gin.Engine, ver middleware.Verifier, limit gin.HandlerFunc) {
	var auth gin.HandlerFunc
	if ver != nil {
		auth = middleware.AuthMiddleware(ver)
	} else {
		auth = func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "token verification not configured"})
		}
	}

	chain := []gin.HandlerFunc{auth}
	if limit != nil {
		chain = append(chain, limit)
	}

	r.POST("/graphql/invoke", append(chain, h.Invoke)...)

	api := r.Group("/api/v1", chain...)
	api.POST("/users", h.RegisterUser)
	api.GET("/users", h.ListUsers)
	api.PUT("/users/:id/role", h.UpdateUserRole)
	api.GET("/me", h.Me)
}

// invokeRequest is the AppSync-shaped body accepted by /graphql/invoke.
// Any identity in the body is ignored; the bearer token decides.
type invokeRequest struct {
	Info      dispatch.Info   `json:"info"`
	Arguments json.RawMessage `json:"arguments"`
}

// Invoke runs an operation named in an AppSync-shaped request body.
func (h *UserHandler) Invoke(c *gin.Context) {
	var req invokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.run(c, req.Info.FieldName, req.Arguments)
}

func (h *UserHandler) RegisterUser(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return
	}
	h.run(c, dispatch.OpRegisterUser, body)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	h.run(c, dispatch.OpListUsers, nil)
}

// UpdateUserRole takes the user id from the path and the role from the body.
func (h *UserHandler) UpdateUserRole(c *gin.Context) {
	var req struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	args, _ := json.Marshal(map[string]string{"userId": c.Param("id"), "role": req.Role})
	h.run(c, dispatch.OpUpdateUserRole, args)
}

func (h *UserHandler) Me(c *gin.Context) {
	h.run(c, dispatch.OpMe, nil)
}

func (h *UserHandler) run(c *gin.Context, op string, args json.RawMessage) {
	res := h.d.Dispatch(c.Request.Context(), dispatch.Invocation{
		Info:      dispatch.Info{FieldName: op},
		Arguments: args,
		Identity:  middleware.IdentityFrom(c),
	})
	c.JSON(statusFor(res.Kind), res.Body())
}

// statusFor maps an error kind to the HTTP status returned with it.
func statusFor(k dispatch.ErrorKind) int {
	switch k {
	case dispatch.KindNone:
		return http.StatusOK
	case dispatch.KindAccessDenied:
		return http.StatusForbidden
	case dispatch.KindUnauthenticated:
		return http.StatusUnauthorized
	case dispatch.KindNotFound:
		return http.StatusNotFound
	case dispatch.KindBadRequest, dispatch.KindUnknownOperation:
		return http.StatusBadRequest
	case dispatch.KindProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
