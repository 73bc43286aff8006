package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EmailHistory records every outbound mail and the delivery events the
// provider webhook reports back for it.
type EmailHistory struct {
	gorm.Model
	EmailType        string         `gorm:"column:email_type;size:50;not null"`
	MessageID        string         `gorm:"column:message_id;size:255;index:idx_email_history_message"`
	Status           string         `gorm:"column:status;size:20;not null"`
	Email            string         `gorm:"column:email;size:254;not null;index:idx_email_history_message"`
	FromEmail        string         `gorm:"column:from_email;size:254;not null"`
	ProviderResponse datatypes.JSON `gorm:"column:provider_response"`
}
