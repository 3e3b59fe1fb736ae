// Package store provides the persistence operations behind the console:
// message recording, session lifecycle, and the customer registry. Functions
// operate on a caller-supplied *gorm.DB.
package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ombrelle/switchboard/internal/models"
	"gorm.io/gorm"
)

// InboundOpts holds optional parameters for recording an inbound message.
type InboundOpts struct {
	MediaURL     string
	LocationJSON string
	Department   string // department of the session opened when none is active
}

// RecordInbound appends an inbound message and returns it with the session it
// belongs to. When the customer has no open session, a new one is opened at
// the message timestamp: the first inbound message starts the conversation.
func RecordInbound(gdb *gorm.DB, phone, body string, ts int64, opts InboundOpts) (*models.Message, *models.Session, error) {
	if phone == "" {
		return nil, nil, fmt.Errorf("store: phone is required")
	}

	session, err := OpenSessionFor(gdb, phone)
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		dept := opts.Department
		if dept == "" {
			dept = models.DeptSupport
		}
		session, err = OpenSession(gdb, phone, dept, "", ts)
		if err != nil {
			return nil, nil, err
		}
	}

	msg := models.Message{
		Phone:        phone,
		Direction:    models.DirectionIncoming,
		Timestamp:    ts,
		Body:         body,
		MediaURL:     opts.MediaURL,
		LocationJSON: opts.LocationJSON,
		CreatedAt:    time.Now(),
	}
	if err := gdb.Create(&msg).Error; err != nil {
		return nil, nil, fmt.Errorf("store: record inbound: %w", err)
	}
	return &msg, session, nil
}

// RecordOutbound appends an outbound message. Sends never open sessions;
// agents reply into whatever session the timestamp falls in.
func RecordOutbound(gdb *gorm.DB, phone, body string, ts int64, mediaURL string) (*models.Message, error) {
	if phone == "" {
		return nil, fmt.Errorf("store: phone is required")
	}

	msg := models.Message{
		Phone:     phone,
		Direction: models.DirectionOutgoing,
		Timestamp: ts,
		Body:      body,
		MediaURL:  mediaURL,
		CreatedAt: time.Now(),
	}
	if err := gdb.Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("store: record outbound: %w", err)
	}
	return &msg, nil
}

// MessagesForPhone returns a customer's full message stream, ordered by
// timestamp then ID so repeated fetches are stable.
func MessagesForPhone(gdb *gorm.DB, phone string) ([]models.Message, error) {
	if phone == "" {
		return nil, fmt.Errorf("store: phone is required")
	}
	var msgs []models.Message
	if err := gdb.Where("phone = ?", phone).
		Order("timestamp ASC, id ASC").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("store: messages for %s: %w", phone, err)
	}
	return msgs, nil
}

// OpenSession opens a session for a phone with a fresh ticket. Fails when the
// phone already has an open session: at most one may be open at a time.
func OpenSession(gdb *gorm.DB, phone, department, customerID string, startTS int64) (*models.Session, error) {
	if phone == "" {
		return nil, fmt.Errorf("store: phone is required")
	}

	existing, err := OpenSessionFor(gdb, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("store: session %s already open for %s", existing.Ticket, phone)
	}

	session := models.Session{
		Ticket:     uuid.NewString(),
		Phone:      phone,
		Department: department,
		StartTS:    startTS,
		CustomerID: customerID,
		Strategy:   models.StrategyWindow,
		CreatedAt:  time.Now(),
	}
	if err := gdb.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("store: open session for %s: %w", phone, err)
	}
	return &session, nil
}

// CloseSession sets the end timestamp of an open session.
func CloseSession(gdb *gorm.DB, ticket string, endTS int64) error {
	session, err := SessionByTicket(gdb, ticket)
	if err != nil {
		return err
	}
	if !session.Open() {
		return fmt.Errorf("store: session %s already closed", ticket)
	}
	if endTS < session.StartTS {
		return fmt.Errorf("store: session %s: end %d before start %d", ticket, endTS, session.StartTS)
	}

	if err := gdb.Model(&models.Session{}).Where("ticket = ?", ticket).
		Update("end_ts", endTS).Error; err != nil {
		return fmt.Errorf("store: close session %s: %w", ticket, err)
	}
	return nil
}

// OpenSessionFor returns the phone's open session, or nil when none exists.
func OpenSessionFor(gdb *gorm.DB, phone string) (*models.Session, error) {
	var session models.Session
	err := gdb.Where("phone = ? AND end_ts IS NULL", phone).First(&session).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: open session for %s: %w", phone, err)
	}
	return &session, nil
}

// SessionByTicket fetches a session by its ticket.
func SessionByTicket(gdb *gorm.DB, ticket string) (*models.Session, error) {
	if ticket == "" {
		return nil, fmt.Errorf("store: ticket is required")
	}
	var session models.Session
	if err := gdb.Where("ticket = ?", ticket).First(&session).Error; err != nil {
		return nil, fmt.Errorf("store: session %s: %w", ticket, err)
	}
	return &session, nil
}

// SessionsForPhone returns all sessions for a phone ordered by start time.
func SessionsForPhone(gdb *gorm.DB, phone string) ([]models.Session, error) {
	if phone == "" {
		return nil, fmt.Errorf("store: phone is required")
	}
	var sessions []models.Session
	if err := gdb.Where("phone = ?", phone).
		Order("start_ts ASC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("store: sessions for %s: %w", phone, err)
	}
	return sessions, nil
}

// AllSessions returns every session, optionally filtered by department.
func AllSessions(gdb *gorm.DB, department string) ([]models.Session, error) {
	q := gdb.Order("start_ts ASC")
	if department != "" {
		q = q.Where("department = ?", department)
	}
	var sessions []models.Session
	if err := q.Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("store: sessions: %w", err)
	}
	return sessions, nil
}

// AllMessages returns every message ordered by timestamp then ID.
func AllMessages(gdb *gorm.DB) ([]models.Message, error) {
	var msgs []models.Message
	if err := gdb.Order("timestamp ASC, id ASC").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("store: messages: %w", err)
	}
	return msgs, nil
}

// Customer fetches one registry row; missing customers come back as a bare
// row carrying just the phone, since the registry is owned elsewhere and may
// lag behind message traffic.
func Customer(gdb *gorm.DB, phone string) (models.Customer, error) {
	var c models.Customer
	err := gdb.Where("phone = ?", phone).First(&c).Error
	if err == gorm.ErrRecordNotFound {
		return models.Customer{Phone: phone}, nil
	}
	if err != nil {
		return models.Customer{}, fmt.Errorf("store: customer %s: %w", phone, err)
	}
	return c, nil
}

// Customers returns the full registry.
func Customers(gdb *gorm.DB) ([]models.Customer, error) {
	var cs []models.Customer
	if err := gdb.Order("phone ASC").Find(&cs).Error; err != nil {
		return nil, fmt.Errorf("store: customers: %w", err)
	}
	return cs, nil
}

// UpsertCustomer creates or updates a registry row by phone.
func UpsertCustomer(gdb *gorm.DB, c models.Customer) error {
	if c.Phone == "" {
		return fmt.Errorf("store: phone is required")
	}
	existing := models.Customer{}
	err := gdb.Where("phone = ?", c.Phone).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		if err := gdb.Create(&c).Error; err != nil {
			return fmt.Errorf("store: create customer %s: %w", c.Phone, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: customer %s: %w", c.Phone, err)
	}
	if err := gdb.Model(&models.Customer{}).Where("phone = ?", c.Phone).
		Updates(map[string]interface{}{
			"name": c.Name, "email": c.Email, "customer_id": c.CustomerID,
		}).Error; err != nil {
		return fmt.Errorf("store: update customer %s: %w", c.Phone, err)
	}
	return nil
}
