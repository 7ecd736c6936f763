package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"solicitations/internal/logger"
	"solicitations/internal/models"

	"github.com/go-chi/render"
)

const maxBodyBytes = 1 << 20

type Service interface {
	GetSolicitations(ctx context.Context) ([]models.Solicitation, error)
	AddSolicitation(ctx context.Context, solicitation models.Solicitation) (models.Solicitation, error)
	EditSolicitation(ctx context.Context, id string, update models.SolicitationUpdate) (models.Solicitation, error)

	GetUsers(ctx context.Context) ([]models.User, error)
	AddUser(ctx context.Context, user models.User) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
}

type Controller struct {
	service Service
	log     *slog.Logger
}

func NewController(service Service, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{service: service, log: log}
}

// GET /api/ping
func (c *Controller) Ping(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, "ok")
}

//// Solicitations

// GET /api/solicitations
func (c *Controller) GetSolicitations(w http.ResponseWriter, r *http.Request) {
	const op = "controller.Controller.GetSolicitations"

	solicitations, err := c.service.GetSolicitations(r.Context())
	if err != nil {
		c.failure(w, r, op, err, "Failed to fetch solicitations", false)
		return
	}

	render.JSON(w, r, solicitations)
}

// POST /api/solicitations
func (c *Controller) NewSolicitation(w http.ResponseWriter, r *http.Request) {
	const op = "controller.Controller.NewSolicitation"

	data, err := c.readBody(w, r)
	if err != nil {
		c.failure(w, r, op, err, "Failed to create solicitation", false)
		return
	}

	req, err := ParseNewSolicitationReq(data)
	if err != nil {
		c.failure(w, r, op, err, "Failed to create solicitation", false)
		return
	}

	solicitation, err := c.service.AddSolicitation(r.Context(), req)
	if err != nil {
		c.failure(w, r, op, err, "Failed to create solicitation", false)
		return
	}

	c.log.Info("solicitation created", slog.String("id", solicitation.Id), slog.Int("clins", len(solicitation.Clins)))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, solicitation)
}

// PUT /api/solicitations
func (c *Controller) EditSolicitation(w http.ResponseWriter, r *http.Request) {
	const op = "controller.Controller.EditSolicitation"

	data, err := c.readBody(w, r)
	if err != nil {
		c.failure(w, r, op, err, "Failed to update solicitation", true)
		return
	}

	id, update, err := ParseSolicitationChangeReq(data)
	if errors.Is(err, models.ErrMissingId) {
		c.errorResponse(w, r, http.StatusBadRequest, "Solicitation ID is required", "")
		return
	} else if err != nil {
		c.failure(w, r, op, err, "Failed to update solicitation", true)
		return
	}

	c.log.Debug("solicitation update received",
		slog.String("id", id),
		slog.Int("fields", len(update.Fields)),
		slog.Bool("replace_clins", update.ReplaceClins),
		slog.Int("clins", len(update.Clins)),
	)

	solicitation, err := c.service.EditSolicitation(r.Context(), id, update)
	if err != nil {
		c.failure(w, r, op, err, "Failed to update solicitation", true)
		return
	}

	render.JSON(w, r, solicitation)
}

//// Users

// GET /api/users
func (c *Controller) GetUsers(w http.ResponseWriter, r *http.Request) {
	const op = "controller.Controller.GetUsers"

	users, err := c.service.GetUsers(r.Context())
	if err != nil {
		c.failure(w, r, op, err, "Failed to fetch users", false)
		return
	}

	render.JSON(w, r, users)
}

// POST /api/users
func (c *Controller) NewUser(w http.ResponseWriter, r *http.Request) {
	const op = "controller.Controller.NewUser"

	data, err := c.readBody(w, r)
	if err != nil {
		c.failure(w, r, op, err, "Failed to create user", false)
		return
	}

	req, err := ParseNewUserReq(data)
	if err != nil {
		c.failure(w, r, op, err, "Failed to create user", false)
		return
	}

	user, err := c.service.AddUser(r.Context(), req)
	if err != nil {
		c.failure(w, r, op, err, "Failed to create user", false)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, user)
}

// PATCH /api/users
func (c *Controller) FindUser(w http.ResponseWriter, r *http.Request) {
	const op = "controller.Controller.FindUser"

	data, err := c.readBody(w, r)
	if err != nil {
		c.failure(w, r, op, err, "Failed to find user", false)
		return
	}

	req, err := ParseFindUserReq(data)
	if err != nil {
		c.failure(w, r, op, err, "Failed to find user", false)
		return
	}

	user, err := c.service.UserByEmail(r.Context(), req.Email)
	if errors.Is(err, models.ErrNoUser) {
		c.log.Debug("user lookup missed", slog.String("email", req.Email))
		c.errorResponse(w, r, http.StatusNotFound, "User not found", "")
		return
	} else if err != nil {
		c.failure(w, r, op, err, "Failed to find user", false)
		return
	}

	render.JSON(w, r, user)
}

//// Fallbacks

func (c *Controller) NotFound(w http.ResponseWriter, r *http.Request) {
	c.errorResponse(w, r, http.StatusNotFound, "page not found", "")
}

func (c *Controller) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	c.errorResponse(w, r, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method), "")
}

// Service

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (c *Controller) errorResponse(w http.ResponseWriter, r *http.Request, status int, text, details string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: text, Details: details})
}

// failure logs err and answers 500. Details carry the innermost error only
// when the endpoint exposes it, the wrap chain stays in the log.
func (c *Controller) failure(w http.ResponseWriter, r *http.Request, op string, err error, text string, withDetails bool) {
	c.log.Error(text, slog.String("op", op), logger.Err(err))

	details := ""
	if withDetails {
		details = rootCause(err).Error()
	}
	c.errorResponse(w, r, http.StatusInternalServerError, text, details)
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func (c *Controller) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	src := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer src.Close()

	return io.ReadAll(src)
}
