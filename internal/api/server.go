// Package api handles HTTP and WebSocket API endpoints
package api

import (
	"fmt"
	"image/png"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/posprint/receipt-templates/internal/assemble"
	"github.com/posprint/receipt-templates/internal/preview"
	"github.com/posprint/receipt-templates/internal/store"
	"github.com/posprint/receipt-templates/pkg/templateformat"
)

// Server is the API server
type Server struct {
	router    *gin.Engine
	store     store.Store
	assembler *assemble.Assembler
	upgrader  websocket.Upgrader
}

// NewServer creates a new API server
func NewServer(templates store.Store, assembler *assemble.Assembler) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.Default()
	router.Use(corsMiddleware())

	server := &Server{
		router:    router,
		store:     templates,
		assembler: assembler,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	// Template storage
	s.router.GET("/templates", s.handleGetTemplates)
	s.router.GET("/template/:id", s.handleGetTemplate)
	s.router.POST("/template", s.handleSaveTemplate)
	s.router.DELETE("/template/:id", s.handleDeleteTemplate)

	// Rendering
	s.router.POST("/render", s.handleRender)
	s.router.POST("/preview", s.handlePreview)

	// WebSocket
	s.router.GET("/ws", s.handleWebSocket)

	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}

// handleGetTemplates returns all stored templates
func (s *Server) handleGetTemplates(c *gin.Context) {
	records := s.store.List()

	c.JSON(200, gin.H{
		"templates": records,
	})
}

// handleGetTemplate returns one stored template
func (s *Server) handleGetTemplate(c *gin.Context) {
	record := s.store.Get(c.Param("id"))
	if record == nil {
		c.JSON(404, gin.H{"error": "template not found"})
		return
	}

	c.JSON(200, record)
}

// handleSaveTemplate creates or updates a stored template
func (s *Server) handleSaveTemplate(c *gin.Context) {
	var record store.Record

	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if len(record.Configuration) == 0 {
		c.JSON(400, gin.H{"error": "configuration is required"})
		return
	}

	// Reject configurations that do not parse as a document
	if _, err := templateformat.Parse(record.Configuration); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid configuration: %v", err)})
		return
	}

	id, err := s.store.Save(&record)
	if err != nil {
		c.JSON(500, gin.H{"error": fmt.Sprintf("failed to save template: %v", err)})
		return
	}

	s.BroadcastTemplateSaved(id)

	c.JSON(200, gin.H{
		"success":     true,
		"template_id": id,
	})
}

// handleDeleteTemplate removes a stored template
func (s *Server) handleDeleteTemplate(c *gin.Context) {
	id := c.Param("id")
	if !s.store.Delete(id) {
		c.JSON(404, gin.H{"error": "template not found"})
		return
	}

	s.BroadcastTemplateDeleted(id)

	c.JSON(200, gin.H{"success": true})
}

// renderRequest is shared by the render and preview endpoints. The
// template comes inline, by stored id, or from the default for a kind.
type renderRequest struct {
	Template    *templateformat.Document `json:"template"`
	TemplateID  string                   `json:"template_id"`
	ReceiptKind string                   `json:"receipt_kind"`
	Data        map[string]interface{}   `json:"data"`
}

func (s *Server) loadTemplate(req *renderRequest) (*templateformat.Document, error) {
	if req.Template != nil {
		return req.Template, nil
	}

	if req.TemplateID != "" {
		record := s.store.Get(req.TemplateID)
		if record == nil {
			return nil, fmt.Errorf("template %s not found", req.TemplateID)
		}
		return record.Document()
	}

	if req.ReceiptKind != "" {
		if record := s.store.Default(req.ReceiptKind); record != nil {
			return record.Document()
		}
	}

	// No template anywhere: fall back to the built-in document so a
	// bare render request still produces output.
	return templateformat.DefaultDocument(), nil
}

// handleRender assembles a template against data and returns the
// fragment stream as JSON
func (s *Server) handleRender(c *gin.Context) {
	var req renderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	doc, err := s.loadTemplate(&req)
	if err != nil {
		c.JSON(404, gin.H{"error": err.Error()})
		return
	}

	rendered := s.assembler.Assemble(c.Request.Context(), doc, req.Data)

	c.JSON(200, rendered)
}

// handlePreview assembles a template and returns a PNG raster preview
func (s *Server) handlePreview(c *gin.Context) {
	var req renderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	doc, err := s.loadTemplate(&req)
	if err != nil {
		c.JSON(404, gin.H{"error": err.Error()})
		return
	}

	rendered := s.assembler.Assemble(c.Request.Context(), doc, req.Data)
	img := preview.Render(rendered)

	c.Header("Content-Type", "image/png")
	c.Status(200)
	if err := png.Encode(c.Writer, img); err != nil {
		fmt.Printf("Preview encode error: %v\n", err)
	}
}

// Run starts the API server
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
