package api

import (
	"context"
	"net/http"
	"strings"

	"whatsapp-bulk-sender/internal/session"
	"whatsapp-bulk-sender/pkg/models"

	"github.com/gin-gonic/gin"
)

// StatusSource reports the state of the current or last dispatch job.
type StatusSource interface {
	Status() models.ProgressEvent
}

type BroadcastHandler struct {
	Session           *session.Session
	Status            StatusSource
	AttachmentBaseURL string
	// ctx outlives the request that starts a dispatch; it is the server's lifetime.
	ctx context.Context
}

func NewBroadcastHandler(ctx context.Context, s *session.Session, status StatusSource, attachmentBaseURL string) *BroadcastHandler {
	return &BroadcastHandler{Session: s, Status: status, AttachmentBaseURL: attachmentBaseURL, ctx: ctx}
}

type TemplateRequest struct {
	Text string `json:"text"`
}

func (h *BroadcastHandler) GetTemplate(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"text": h.Session.Template()})
}

func (h *BroadcastHandler) SetTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.Session.SetTemplate(req.Text)
	c.JSON(http.StatusOK, gin.H{"text": req.Text, "preview": h.Session.Preview()})
}

func (h *BroadcastHandler) Preview(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"preview": h.Session.Preview()})
}

// AttachmentRequest carries either a resolved reference or the name of a file
// already uploaded under the attachment base URL.
type AttachmentRequest struct {
	Reference string `json:"reference"`
	Filename  string `json:"filename"`
}

func (h *BroadcastHandler) SetAttachment(c *gin.Context) {
	var req AttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ref := strings.TrimSpace(req.Reference)
	if ref == "" && strings.TrimSpace(req.Filename) != "" {
		ref = h.AttachmentBaseURL + "/" + strings.TrimLeft(strings.TrimSpace(req.Filename), "/")
	}
	if ref == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reference or filename is required"})
		return
	}
	h.Session.SetAttachment(ref)
	c.JSON(http.StatusOK, gin.H{"reference": ref})
}

func (h *BroadcastHandler) ClearAttachment(c *gin.Context) {
	h.Session.SetAttachment("")
	c.JSON(http.StatusOK, gin.H{"status": "Attachment removed"})
}

// StartDispatch snapshots the selection and template and sends in the
// background. Progress is available from DispatchStatus and the websocket.
func (h *BroadcastHandler) StartDispatch(c *gin.Context) {
	jobID, notice, err := h.Session.Start(h.ctx)
	if err != nil {
		c.JSON(statusFor(err), noticeBody(err, notice))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID, "notice": notice})
}

func (h *BroadcastHandler) CancelDispatch(c *gin.Context) {
	if !h.Session.Cancel() {
		c.JSON(http.StatusNotFound, gin.H{"error": "no dispatch in progress"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "Cancelling"})
}

func (h *BroadcastHandler) DispatchStatus(c *gin.Context) {
	resp := gin.H{"status": h.Status.Status(), "running": h.Session.Running()}
	if sum, ok := h.Session.LastSummary(); ok {
		resp["last"] = sum
	}
	c.JSON(http.StatusOK, resp)
}
