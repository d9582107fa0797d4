package services

import (
	"embed"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"strings"

	"hostel-complaint-api/models"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

const (
	msgNewComplaint     = "NotifyNewComplaint"
	msgStatusInProgress = "NotifyStatusInProgress"
	msgStatusResolved   = "NotifyStatusResolved"
	msgStatusRejected   = "NotifyStatusRejected"
	msgStatusChanged    = "NotifyStatusChanged"
	msgMailSubject      = "MailStatusSubject"
	msgMailBody         = "MailStatusBody"
)

// MessageCatalog renders notification and email text from the embedded locale files.
type MessageCatalog struct {
	localizer *i18n.Localizer
}

// NewMessageCatalog loads every embedded locale and localizes to lang, falling back to English.
func NewMessageCatalog(lang string) (*MessageCatalog, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read embedded locales: %w", err)
	}
	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+entry.Name()); err != nil {
			return nil, fmt.Errorf("load message file %s: %w", entry.Name(), err)
		}
		loaded++
	}
	if loaded == 0 {
		return nil, fmt.Errorf("no message files found in locales/")
	}

	return &MessageCatalog{localizer: i18n.NewLocalizer(bundle, lang, language.English.String())}, nil
}

// MustMessageCatalog is NewMessageCatalog for start-up wiring and tests.
func MustMessageCatalog(lang string) *MessageCatalog {
	catalog, err := NewMessageCatalog(lang)
	if err != nil {
		log.Fatalf("[messages] %v", err)
	}
	return catalog
}

func (c *MessageCatalog) render(id string, data map[string]interface{}) string {
	msg, err := c.localizer.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		log.Printf("[messages] failed to render %s: %v", id, err)
		return id
	}
	return msg
}

// NewComplaintMessage is the text admins receive when a student files a complaint.
func (c *MessageCatalog) NewComplaintMessage(studentName, title string) string {
	return c.render(msgNewComplaint, map[string]interface{}{
		"StudentName": studentName,
		"Title":       title,
	})
}

// StatusChangeMessage is the text the owner receives for a status change.
// Rejections embed reason verbatim.
func (c *MessageCatalog) StatusChangeMessage(title string, oldStatus, newStatus models.ComplaintStatus, reason string) string {
	data := map[string]interface{}{
		"Title":     title,
		"OldStatus": string(oldStatus),
		"NewStatus": string(newStatus),
		"Reason":    reason,
	}
	switch newStatus {
	case models.StatusInProgress:
		return c.render(msgStatusInProgress, data)
	case models.StatusResolved:
		return c.render(msgStatusResolved, data)
	case models.StatusRejected:
		return c.render(msgStatusRejected, data)
	default:
		return c.render(msgStatusChanged, data)
	}
}

// StatusMail returns the subject and HTML body of the owner's status email.
func (c *MessageCatalog) StatusMail(studentName, title, message string) (string, string) {
	subject := c.render(msgMailSubject, map[string]interface{}{"Title": title})
	body := c.render(msgMailBody, map[string]interface{}{
		"StudentName": html.EscapeString(studentName),
		"Message":     html.EscapeString(message),
	})
	return subject, body
}
