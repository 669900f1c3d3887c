package session

import (
	"errors"
	"fmt"

	"whatsapp-bulk-sender/internal/dispatch"
	"whatsapp-bulk-sender/pkg/models"
)

func busyNotice() models.Notice {
	return models.Notice{
		Title:       "Busy",
		Description: "Wait for the current sending or import to finish.",
		Variant:     "destructive",
	}
}

func preconditionNotice(err error) models.Notice {
	switch {
	case errors.Is(err, ErrBusy):
		return busyNotice()
	case errors.Is(err, ErrNoSelection):
		return models.Notice{
			Title:       "No contacts selected",
			Description: "Please select at least one contact to send messages to.",
			Variant:     "destructive",
		}
	case errors.Is(err, ErrEmptyTemplate):
		return models.Notice{
			Title:       "No message content",
			Description: "Please compose a message before sending.",
			Variant:     "destructive",
		}
	}
	return models.Notice{Title: "Sending failed", Description: err.Error(), Variant: "destructive"}
}

func outcomeNotice(sum dispatch.Summary, err error) models.Notice {
	if err != nil {
		return models.Notice{
			Title:       "Sending failed",
			Description: fmt.Sprintf("Failed to send messages after %d of %d. Please try again.", sum.Sent, sum.Total),
			Variant:     "destructive",
		}
	}
	if sum.Failed > 0 {
		return models.Notice{
			Title:       "Messages sent with failures",
			Description: fmt.Sprintf("Sent to %d of %d contacts; %d failed.", sum.Sent, sum.Total, sum.Failed),
			Variant:     "destructive",
		}
	}
	return models.Notice{
		Title:       "Messages sent",
		Description: fmt.Sprintf("Successfully sent to %d contacts.", sum.Sent),
	}
}
