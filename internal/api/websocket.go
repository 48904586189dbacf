package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/posprint/receipt-templates/internal/preview"
	"github.com/posprint/receipt-templates/pkg/templateformat"
)

// WebSocket message types
const (
	EventRender          = "render"
	EventPreview         = "preview"
	EventEdit            = "edit"
	EventTemplateSaved   = "template_saved"
	EventTemplateDeleted = "template_deleted"
	EventResponse        = "response"
	EventError           = "error"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

// WSClient represents a connected WebSocket client
type WSClient struct {
	conn   *websocket.Conn
	send   chan WSMessage
	server *Server
	mu     sync.Mutex
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		fmt.Printf("WebSocket upgrade failed: %v\n", err)
		return
	}

	client := &WSClient{
		conn:   conn,
		send:   make(chan WSMessage, 256),
		server: s,
	}

	go client.readPump()
	go client.writePump()
}

func (c *WSClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		c.mu.Lock()
		err := c.conn.WriteJSON(msg)
		c.mu.Unlock()

		if err != nil {
			fmt.Printf("WebSocket write error: %v\n", err)
			return
		}
	}
}

func (c *WSClient) handleMessage(msg *WSMessage) {
	switch msg.Event {
	case EventRender:
		c.handleRenderEvent(msg.Data, false)
	case EventPreview:
		c.handleRenderEvent(msg.Data, true)
	case EventEdit:
		c.handleEditEvent(msg.Data)
	default:
		c.sendError(fmt.Sprintf("unknown event: %s", msg.Event))
	}
}

// handleRenderEvent assembles the given template and sends the fragment
// stream back, or a base64 PNG when preview is requested. Live editors
// send this on every template mutation.
func (c *WSClient) handleRenderEvent(data map[string]interface{}, asPreview bool) {
	req := renderRequest{}

	if templateData, ok := data["template"]; ok {
		templateBytes, _ := json.Marshal(templateData)
		var doc templateformat.Document
		if err := json.Unmarshal(templateBytes, &doc); err != nil {
			c.sendError(fmt.Sprintf("invalid template: %v", err))
			return
		}
		req.Template = &doc
	}

	if id, ok := data["template_id"].(string); ok {
		req.TemplateID = id
	}
	if kind, ok := data["receipt_kind"].(string); ok {
		req.ReceiptKind = kind
	}
	if renderData, ok := data["data"].(map[string]interface{}); ok {
		req.Data = renderData
	}

	doc, err := c.server.loadTemplate(&req)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	rendered := c.server.assembler.Assemble(context.Background(), doc, req.Data)

	if !asPreview {
		c.sendResponse(map[string]interface{}{
			"success":  true,
			"rendered": rendered,
		})
		return
	}

	img := preview.Render(rendered)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		c.sendError(fmt.Sprintf("failed to encode preview: %v", err))
		return
	}

	c.sendResponse(map[string]interface{}{
		"success": true,
		"preview": base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
}

func (c *WSClient) sendResponse(data map[string]interface{}) {
	c.send <- WSMessage{
		Event: EventResponse,
		Data:  data,
	}
}

func (c *WSClient) sendError(message string) {
	c.send <- WSMessage{
		Event: EventError,
		Data: map[string]interface{}{
			"error": message,
		},
	}
}

// Client tracking for broadcasts
var (
	clients   = make(map[*WSClient]bool)
	clientsMu sync.RWMutex
)

func addClient(client *WSClient) {
	clientsMu.Lock()
	clients[client] = true
	clientsMu.Unlock()
}

func removeClient(client *WSClient) {
	clientsMu.Lock()
	delete(clients, client)
	clientsMu.Unlock()
}

func (c *WSClient) readPump() {
	defer func() {
		removeClient(c)
		c.conn.Close()
	}()

	addClient(c)

	for {
		var msg WSMessage
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				fmt.Printf("WebSocket error: %v\n", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// BroadcastTemplateSaved notifies connected editors that a template changed
func (s *Server) BroadcastTemplateSaved(id string) {
	broadcast(WSMessage{
		Event: EventTemplateSaved,
		Data:  map[string]interface{}{"id": id},
	})
}

// BroadcastTemplateDeleted notifies connected editors that a template was removed
func (s *Server) BroadcastTemplateDeleted(id string) {
	broadcast(WSMessage{
		Event: EventTemplateDeleted,
		Data:  map[string]interface{}{"id": id},
	})
}

func broadcast(message WSMessage) {
	clientsMu.RLock()
	defer clientsMu.RUnlock()

	for client := range clients {
		select {
		case client.send <- message:
		default:
			// Client send buffer full, skip
		}
	}
}
