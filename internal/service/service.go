package service

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gitlab.com/dirk.krummacker/contact-directory/internal/errs"
	"gitlab.com/dirk.krummacker/contact-directory/internal/logger"
	api "gitlab.com/dirk.krummacker/contact-directory/pkg/model"
)

// RouterConfig holds the options of the HTTP router.
type RouterConfig struct {
	// HttpLogging turns on one log line per request.
	HttpLogging bool

	// CorsOrigins lists the origins allowed to call the API from a browser. CORS headers are only
	// sent if the list is not empty.
	CorsOrigins []string
}

// handler binds the HTTP endpoints to a directory.
type handler struct {
	directory *Directory
	log       zerolog.Logger
}

// SetupHttpRouter initializes the REST API router and registers all endpoints.
func SetupHttpRouter(directory *Directory, log zerolog.Logger, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.HttpLogging {
		router.Use(logger.Requests(log))
	} else {
		log.Info().Msg("turning off HTTP request logging")
	}
	if len(cfg.CorsOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CorsOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Content-Type"},
		}))
	}

	h := &handler{directory: directory, log: log}
	router.GET("/health", h.health)
	router.GET("/contatos", h.listContacts)
	router.POST("/contatos", h.createContact)
	router.GET("/contatos/:id", h.findContactByID)
	router.PUT("/contatos/:id", h.updateContactByID)
	router.DELETE("/contatos/:id", h.deleteContactByID)
	return router
}

// listContacts responds with all contacts ordered by name as JSON. An empty directory yields an
// empty array.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contatos
func (h *handler) listContacts(c *gin.Context) {
	contacts, err := h.directory.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, contacts)
}

// createContact stores the contact specified in the request's JSON. It responds with the full
// contact including the newly assigned id and the age.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contatos --request "POST" --include --header "Content-Type: application/json" --data '{"name": "Erika Mustermann", "birth_date": "1969-03-02", "email": "erika@example.com", "phone": "+49 0815 4711"}'
func (h *handler) createContact(c *gin.Context) {
	input, ok := h.bindInput(c)
	if !ok {
		return
	}
	contact, err := h.directory.Create(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, contact)
}

// findContactByID responds with the contact whose id matches the id parameter of the request URL.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contatos/0b7c8a0e-6f7d-4a51-9a53-4bd5c3e6a0f1
func (h *handler) findContactByID(c *gin.Context) {
	contact, err := h.directory.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, contact)
}

// updateContactByID replaces all values of the contact whose id matches the id parameter of the
// request URL and responds with the new version of the contact. Optional values missing from the
// JSON are cleared.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contatos/0b7c8a0e-6f7d-4a51-9a53-4bd5c3e6a0f1 --request "PUT" --include --header "Content-Type: application/json" --data '{"name": "Rudi Völler", "birth_date": "1960-04-13", "email": "rudi@example.com"}'
func (h *handler) updateContactByID(c *gin.Context) {
	input, ok := h.bindInput(c)
	if !ok {
		return
	}
	contact, err := h.directory.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, contact)
}

// deleteContactByID deletes the contact whose id matches the id parameter of the request URL. It
// responds with an empty body.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contatos/0b7c8a0e-6f7d-4a51-9a53-4bd5c3e6a0f1 --request "DELETE"
func (h *handler) deleteContactByID(c *gin.Context) {
	if err := h.directory.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// health reports whether the database can be reached.
func (h *handler) health(c *gin.Context) {
	if err := h.directory.Ping(c.Request.Context()); err != nil {
		h.log.Error().Err(err).Msg("health check failed")
		c.IndentedJSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"status": "ok"})
}

// bindInput decodes the request body. Malformed JSON is answered like any other validation
// failure.
func (h *handler) bindInput(c *gin.Context) (api.ContactInput, bool) {
	var input api.ContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondError(c, errs.NewValidationError("invalid JSON: "+err.Error()))
		return input, false
	}
	return input, true
}

func (h *handler) respondError(c *gin.Context, err error) {
	status, body := errs.HTTP(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, body)
}
