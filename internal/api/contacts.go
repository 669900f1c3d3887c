package api

import (
	"encoding/csv"
	"errors"
	"net/http"

	"whatsapp-bulk-sender/internal/contact"
	"whatsapp-bulk-sender/internal/session"
	"whatsapp-bulk-sender/pkg/models"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	Session *session.Session
}

func NewContactHandler(s *session.Session) *ContactHandler {
	return &ContactHandler{Session: s}
}

func (h *ContactHandler) GetContacts(c *gin.Context) {
	contacts, source := h.Session.Contacts()
	c.JSON(http.StatusOK, gin.H{
		"contacts": contacts,
		"selected": h.Session.SelectedIDs(),
		"source":   source,
	})
}

// RefreshContacts reloads the batch from the clients table.
func (h *ContactHandler) RefreshContacts(c *gin.Context) {
	notice, err := h.Session.LoadRemote(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), noticeBody(err, notice))
		return
	}
	contacts, _ := h.Session.Contacts()
	c.JSON(http.StatusOK, gin.H{"notice": notice, "count": len(contacts)})
}

// ImportContacts replaces the batch with an uploaded CSV file (form field "file").
func (h *ContactHandler) ImportContacts(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}
	defer f.Close()

	notice, err := h.Session.ImportCSV(fh.Filename, f)
	if err != nil {
		c.JSON(statusFor(err), noticeBody(err, notice))
		return
	}
	contacts, _ := h.Session.Contacts()
	c.JSON(http.StatusOK, gin.H{"notice": notice, "count": len(contacts)})
}

func (h *ContactHandler) ExportContacts(c *gin.Context) {
	contacts, _ := h.Session.Contacts()

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=contacts.csv")
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	w.Write([]string{"id", "name", "phone", "status"})
	for _, ct := range contacts {
		w.Write([]string{ct.ID, ct.Name, ct.Phone, ct.Status})
	}
	w.Flush()
}

type ToggleRequest struct {
	ID       string `json:"id" binding:"required"`
	Included bool   `json:"included"`
}

func (h *ContactHandler) SelectAll(c *gin.Context) {
	h.Session.SelectAll()
	c.JSON(http.StatusOK, gin.H{"selected": h.Session.SelectedIDs()})
}

func (h *ContactHandler) ClearSelection(c *gin.Context) {
	h.Session.ClearSelection()
	c.JSON(http.StatusOK, gin.H{"selected": h.Session.SelectedIDs()})
}

func (h *ContactHandler) ToggleSelection(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// An id outside the batch leaves the selection as it is.
	changed := true
	if err := h.Session.Toggle(req.ID, req.Included); err != nil {
		if !errors.Is(err, session.ErrUnknownContact) {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		changed = false
	}
	c.JSON(http.StatusOK, gin.H{"selected": h.Session.SelectedIDs(), "changed": changed})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, session.ErrUnknownContact):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNoSelection),
		errors.Is(err, session.ErrEmptyTemplate),
		errors.Is(err, contact.ErrFormat):
		return http.StatusBadRequest
	case errors.Is(err, contact.ErrSourceUnavailable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// noticeBody is the shape every failed operation answers with.
func noticeBody(err error, notice models.Notice) gin.H {
	return gin.H{"error": err.Error(), "notice": notice}
}
